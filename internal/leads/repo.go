// Package leads mirrors CRM pipeline leads locally and turns qualifying
// status changes into board cards.
package leads

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doctorauto/patio-sync/pkg/db/models"
	"github.com/doctorauto/patio-sync/pkg/enums"
	pkgerrors "github.com/doctorauto/patio-sync/pkg/errors"
)

// Repo reads and writes the kommo_leads table.
type Repo struct {
	conn *gorm.DB
}

func NewRepo(conn *gorm.DB) *Repo {
	return &Repo{conn: conn}
}

// FindByLeadID returns the local mirror of a CRM lead, or nil when the lead
// has never been seen.
func (r *Repo) FindByLeadID(ctx context.Context, leadID int64) (*models.KommoLead, error) {
	var lead models.KommoLead
	err := r.conn.WithContext(ctx).Where("kommo_lead_id = ?", leadID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding lead")
	}
	return &lead, nil
}

// Upsert inserts the lead or refreshes its CRM-sourced columns when the lead
// id already exists. Sync bookkeeping columns are left alone so a webhook
// redelivery cannot erase an earlier card reference.
func (r *Repo) Upsert(ctx context.Context, lead *models.KommoLead) error {
	err := r.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kommo_lead_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "phone", "email", "pipeline_name", "status_name",
			"custom_fields", "updated_at",
		}),
	}).Create(lead).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting lead")
	}
	return nil
}

// MarkSynced records the board card created for a lead.
func (r *Repo) MarkSynced(ctx context.Context, leadID int64, cardID, cardURL string) error {
	now := time.Now().UTC()
	err := r.conn.WithContext(ctx).
		Model(&models.KommoLead{}).
		Where("kommo_lead_id = ?", leadID).
		Updates(map[string]any{
			"trello_card_id":  cardID,
			"trello_card_url": cardURL,
			"sync_status":     enums.LeadSyncSynced,
			"sync_error":      nil,
			"last_sync_at":    now,
			"updated_at":      now,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking lead synced")
	}
	return nil
}

// MarkError records a failed card creation attempt for later inspection.
func (r *Repo) MarkError(ctx context.Context, leadID int64, message string) error {
	now := time.Now().UTC()
	err := r.conn.WithContext(ctx).
		Model(&models.KommoLead{}).
		Where("kommo_lead_id = ?", leadID).
		Updates(map[string]any{
			"sync_status":  enums.LeadSyncError,
			"sync_error":   message,
			"last_sync_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking lead error")
	}
	return nil
}
