// Package stages maps board list names onto the shop's workflow stages.
package stages

import (
	"regexp"
	"strings"

	"github.com/doctorauto/patio-sync/pkg/enums"
)

// listNameToStage covers the lists the board is known to carry. Names are
// matched exactly, including emoji prefixes.
var listNameToStage = map[string]enums.Stage{
	"Agendamentos":        enums.StageAgendamentos,
	"Diagnóstico":         enums.StageDiagnostico,
	"Orçamentos Pendentes": enums.StageOrcamentos,
	"Aguard. Aprovação":   enums.StageAguardandoAprovacao,
	"Aguard. Peças":       enums.StageAguardandoPecas,
	"Pronto para Iniciar": enums.StageProntoPraIniciar,
	"Em Execução":         enums.StageEmExecucao,
	"🟡 Prontos":           enums.StageProntos,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// MapListName resolves a board list name to a stage. The mapping is total:
// names containing "entregue" resolve to the terminal stage, and anything
// else falls back to a slug of the name so new lists surface in history
// without code changes.
func MapListName(name string) enums.Stage {
	if stage, ok := listNameToStage[name]; ok {
		return stage
	}
	if strings.Contains(strings.ToLower(name), "entregue") {
		return enums.StageEntregue
	}
	return Slug(name)
}

// Slug normalizes a list name into a stage identifier: lowercased with
// whitespace runs collapsed to underscores.
func Slug(name string) enums.Stage {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, "_")
	if s == "" {
		return enums.StageUnknown
	}
	return enums.Stage(s)
}

// Resolver maps board list IDs to stages for a single reconciliation pass.
// Build one from the board's lists, then resolve per card.
type Resolver struct {
	byListID map[string]enums.Stage
}

// NewResolver indexes the given list ID to name pairs.
func NewResolver(listNames map[string]string) *Resolver {
	byID := make(map[string]enums.Stage, len(listNames))
	for id, name := range listNames {
		byID[id] = MapListName(name)
	}
	return &Resolver{byListID: byID}
}

// Resolve returns the stage for a list ID. Unknown IDs, which can happen when
// a card moves to a list created mid-cycle, resolve to the unknown stage.
func (r *Resolver) Resolve(listID string) enums.Stage {
	if stage, ok := r.byListID[listID]; ok {
		return stage
	}
	return enums.StageUnknown
}
