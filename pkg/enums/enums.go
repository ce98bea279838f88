package enums

// Stage is the canonical workshop pipeline stage a vehicle sits in. Values are
// the slugs persisted to historico_movimentacoes; boards with non-standard
// list names produce ad-hoc slugs through the stage mapper fallback.
type Stage string

const (
	StageAgendamentos        Stage = "agendamentos"
	StageDiagnostico         Stage = "diagnostico"
	StageOrcamentos          Stage = "orcamentos"
	StageAguardandoAprovacao Stage = "aguardando_aprovacao"
	StageAguardandoPecas     Stage = "aguardando_pecas"
	StageProntoPraIniciar    Stage = "pronto_pra_iniciar"
	StageEmExecucao          Stage = "em_execucao"
	StageProntos             Stage = "prontos"
	StageEntregue            Stage = "entregue"

	// StageUnknown is the sentinel used when a card references a list id the
	// board fetch did not return.
	StageUnknown Stage = "desconhecida"
)

// Terminal reports whether reaching the stage closes the vehicle's visit.
func (s Stage) Terminal() bool {
	return s == StageEntregue
}

// VehicleStatus is the vehicle lifecycle state.
type VehicleStatus string

const (
	VehicleStatusActive    VehicleStatus = "ativo"
	VehicleStatusCompleted VehicleStatus = "finalizado"
	VehicleStatusCancelled VehicleStatus = "cancelado"
)

// LeadSyncStatus tracks whether a CRM lead has been mirrored to a board card.
type LeadSyncStatus string

const (
	LeadSyncPending LeadSyncStatus = "pending"
	LeadSyncSynced  LeadSyncStatus = "synced"
	LeadSyncError   LeadSyncStatus = "error"
)
