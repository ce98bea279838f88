package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/doctorauto/patio-sync/pkg/enums"
)

// StageTransition is one append-only ledger row recording a vehicle's move
// between pipeline stages. Rows are never updated or deleted.
type StageTransition struct {
	ID                  uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VeiculoID           uuid.UUID    `gorm:"type:uuid;not null;index:idx_historico_veiculo"`
	TrelloCardID        string       `gorm:"type:text;not null"`
	EtapaAnterior       *enums.Stage `gorm:"type:text"`
	EtapaNova           enums.Stage  `gorm:"type:text;not null"`
	DataMovimentacao    time.Time    `gorm:"type:timestamptz;not null"`
	DiasNaEtapaAnterior *int         `gorm:""`
	MecanicoResponsavel *string      `gorm:"type:text"`
	Observacoes         *string      `gorm:"type:text"`
	CreatedAt           time.Time    `gorm:"type:timestamptz;default:now()"`
}

func (StageTransition) TableName() string { return "historico_movimentacoes" }
