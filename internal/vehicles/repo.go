// Package vehicles owns the persistence of vehicles and their stage history.
package vehicles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doctorauto/patio-sync/pkg/db"
	"github.com/doctorauto/patio-sync/pkg/db/models"
	"github.com/doctorauto/patio-sync/pkg/enums"
	pkgerrors "github.com/doctorauto/patio-sync/pkg/errors"
)

// TxRunner abstracts transaction execution so the repository works against
// both the shared client and test databases.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repo reads and writes the veiculos and historico_movimentacoes tables.
type Repo struct {
	conn *gorm.DB
	tx   TxRunner
}

// NewRepo builds a repository over the given connection. The runner wraps
// multi-statement writes; pass the db client in production.
func NewRepo(conn *gorm.DB, tx TxRunner) *Repo {
	return &Repo{conn: conn, tx: tx}
}

// FindByPlate returns the vehicle for a plate, or nil when none exists.
func (r *Repo) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.conn.WithContext(ctx).Where("placa = ?", plate).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding vehicle by plate")
	}
	return &vehicle, nil
}

// Create registers a vehicle along with its opening stage transition in one
// transaction. The first transition carries no prior stage and no duration.
func (r *Repo) Create(ctx context.Context, plate, model, cardID string, stage enums.Stage, at time.Time) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		Placa:        plate,
		Modelo:       model,
		TrelloCardID: &cardID,
		DataEntrada:  at,
		Status:       enums.VehicleStatusActive,
	}

	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(vehicle).Error; err != nil {
			return err
		}
		transition := &models.StageTransition{
			ID:               uuid.New(),
			VeiculoID:        vehicle.ID,
			TrelloCardID:     cardID,
			EtapaNova:        stage,
			DataMovimentacao: at,
		}
		return tx.Create(transition).Error
	})
	if db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vehicle already exists for plate")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating vehicle")
	}
	return vehicle, nil
}

// UpdateCardReference points an existing vehicle at a new board card. Cards
// get archived and recreated; the plate stays, the card id does not.
func (r *Repo) UpdateCardReference(ctx context.Context, vehicleID uuid.UUID, cardID string) error {
	err := r.conn.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			"trello_card_id": cardID,
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating card reference")
	}
	return nil
}

// LastTransition returns the most recent transition for a vehicle, or nil
// when it has none.
func (r *Repo) LastTransition(ctx context.Context, vehicleID uuid.UUID) (*models.StageTransition, error) {
	var transition models.StageTransition
	err := r.conn.WithContext(ctx).
		Where("veiculo_id = ?", vehicleID).
		Order("data_movimentacao DESC").
		First(&transition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading last transition")
	}
	return &transition, nil
}

// AppendTransition records a stage change. The previous stage and the whole
// days spent in it are derived from the latest transition inside the same
// transaction, so concurrent appends for one vehicle cannot both read the
// same prior row and commit.
func (r *Repo) AppendTransition(ctx context.Context, vehicleID uuid.UUID, cardID string, newStage enums.Stage, at time.Time) (*models.StageTransition, error) {
	transition := &models.StageTransition{
		ID:               uuid.New(),
		VeiculoID:        vehicleID,
		TrelloCardID:     cardID,
		EtapaNova:        newStage,
		DataMovimentacao: at,
	}

	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var prior models.StageTransition
		err := tx.Where("veiculo_id = ?", vehicleID).
			Order("data_movimentacao DESC").
			First(&prior).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First recorded movement for this vehicle.
		case err != nil:
			return err
		default:
			priorStage := prior.EtapaNova
			transition.EtapaAnterior = &priorStage
			days := wholeDays(prior.DataMovimentacao, at)
			transition.DiasNaEtapaAnterior = &days
		}
		return tx.Create(transition).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending stage transition")
	}
	return transition, nil
}

// Close marks the vehicle's visit finished, stamping the exit date.
func (r *Repo) Close(ctx context.Context, vehicleID uuid.UUID, at time.Time) error {
	err := r.conn.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{
			"status":     enums.VehicleStatusCompleted,
			"data_saida": at,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing vehicle")
	}
	return nil
}

// wholeDays is the floor of the elapsed time between from and to in days.
// Negative intervals, which only appear when board timestamps go backwards,
// clamp to zero.
func wholeDays(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
