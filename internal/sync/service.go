// Package sync reconciles the board's current card positions against the
// vehicle records and their stage history.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/doctorauto/patio-sync/internal/identity"
	"github.com/doctorauto/patio-sync/internal/stages"
	"github.com/doctorauto/patio-sync/pkg/db/models"
	"github.com/doctorauto/patio-sync/pkg/enums"
	pkgerrors "github.com/doctorauto/patio-sync/pkg/errors"
	"github.com/doctorauto/patio-sync/pkg/logger"
	"github.com/doctorauto/patio-sync/pkg/trello"
)

// BoardReader is the slice of the board API reconciliation needs.
type BoardReader interface {
	ListLists(ctx context.Context) ([]trello.List, error)
	ListCards(ctx context.Context) ([]trello.Card, error)
}

// VehicleStore is the persistence surface reconciliation writes through.
type VehicleStore interface {
	FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	Create(ctx context.Context, plate, model, cardID string, stage enums.Stage, at time.Time) (*models.Vehicle, error)
	UpdateCardReference(ctx context.Context, vehicleID uuid.UUID, cardID string) error
	LastTransition(ctx context.Context, vehicleID uuid.UUID) (*models.StageTransition, error)
	AppendTransition(ctx context.Context, vehicleID uuid.UUID, cardID string, newStage enums.Stage, at time.Time) (*models.StageTransition, error)
	Close(ctx context.Context, vehicleID uuid.UUID, at time.Time) error
}

// Result summarizes one reconciliation pass. Processed counts every card
// examined, skipped ones included.
type Result struct {
	Processed int
	Created   int
	Moved     int
	Closed    int
	Skipped   int
}

// Service walks every card on the board and brings the vehicle records in
// line with where the cards sit.
type Service struct {
	board  BoardReader
	store  VehicleStore
	logg   *logger.Logger
	now    func() time.Time
	plates *plateLocks
}

func NewService(board BoardReader, store VehicleStore, logg *logger.Logger) *Service {
	return &Service{
		board:  board,
		store:  store,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
		plates: newPlateLocks(),
	}
}

// SyncAll fetches lists and cards, then reconciles card by card. Individual
// card failures are collected rather than aborting the pass; the aggregated
// error is returned alongside the counts so one bad card cannot hide the
// rest of the board.
func (s *Service) SyncAll(ctx context.Context) (Result, error) {
	var (
		lists []trello.List
		cards []trello.Card
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		lists, err = s.board.ListLists(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		cards, err = s.board.ListCards(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching board state")
	}

	listNames := make(map[string]string, len(lists))
	for _, list := range lists {
		listNames[list.ID] = list.Name
	}
	resolver := stages.NewResolver(listNames)

	var result Result
	var errs error
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}
		if err := s.syncCard(ctx, resolver, card, &result); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"processed": result.Processed,
			"created":   result.Created,
			"moved":     result.Moved,
			"closed":    result.Closed,
			"skipped":   result.Skipped,
		}), "reconciliation pass complete")
	}
	return result, errs
}

func (s *Service) syncCard(ctx context.Context, resolver *stages.Resolver, card trello.Card, result *Result) error {
	result.Processed++

	id := identity.Extract(card.Name)
	if id.Plate == "" {
		result.Skipped++
		if s.logg != nil {
			s.logg.Warn(s.logg.WithCardID(ctx, card.ID), "card title carries no plate, skipping")
		}
		return nil
	}

	ctx = s.withCardFields(ctx, id.Plate, card.ID)
	if id.Ambiguous && s.logg != nil {
		s.logg.Warn(ctx, "card title carries multiple plates, using the first")
	}

	stage := resolver.Resolve(card.IDList)
	now := s.now()

	unlock := s.plates.lock(id.Plate)
	defer unlock()

	vehicle, err := s.store.FindByPlate(ctx, id.Plate)
	if err != nil {
		return err
	}

	if vehicle == nil {
		if _, err := s.store.Create(ctx, id.Plate, id.Model, card.ID, stage, now); err != nil {
			return err
		}
		result.Created++
		if stage.Terminal() {
			return s.closeNewlyDelivered(ctx, id.Plate, now, result)
		}
		return nil
	}

	if vehicle.TrelloCardID == nil || *vehicle.TrelloCardID != card.ID {
		if err := s.store.UpdateCardReference(ctx, vehicle.ID, card.ID); err != nil {
			return err
		}
	}

	last, err := s.store.LastTransition(ctx, vehicle.ID)
	if err != nil {
		return err
	}

	if last != nil && last.EtapaNova == stage {
		return nil
	}

	if _, err := s.store.AppendTransition(ctx, vehicle.ID, card.ID, stage, now); err != nil {
		return err
	}
	result.Moved++

	if stage.Terminal() && vehicle.Status == enums.VehicleStatusActive {
		if err := s.store.Close(ctx, vehicle.ID, now); err != nil {
			return err
		}
		result.Closed++
		if s.logg != nil {
			s.logg.Info(ctx, "vehicle delivered, visit closed")
		}
	}
	return nil
}

// closeNewlyDelivered handles the rare case of a card first appearing in a
// delivered list: the vehicle was just created and closes in the same pass.
func (s *Service) closeNewlyDelivered(ctx context.Context, plate string, at time.Time, result *Result) error {
	vehicle, err := s.store.FindByPlate(ctx, plate)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return nil
	}
	if err := s.store.Close(ctx, vehicle.ID, at); err != nil {
		return err
	}
	result.Closed++
	return nil
}

func (s *Service) withCardFields(ctx context.Context, plate, cardID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithCardID(s.logg.WithPlate(ctx, plate), cardID)
}

// plateLocks serializes writes per plate so a webhook-triggered sync and a
// scheduled pass cannot interleave transitions for the same vehicle.
type plateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPlateLocks() *plateLocks {
	return &plateLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *plateLocks) lock(plate string) func() {
	p.mu.Lock()
	lock, ok := p.locks[plate]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[plate] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
