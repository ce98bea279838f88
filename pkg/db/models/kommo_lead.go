package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/doctorauto/patio-sync/pkg/db/types"
	"github.com/doctorauto/patio-sync/pkg/enums"
)

// KommoLead mirrors a CRM pipeline lead locally. One row per external lead id,
// upserted on every webhook delivery.
type KommoLead struct {
	ID            uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	KommoLeadID   int64                `gorm:"not null;uniqueIndex:idx_kommo_leads_lead_id"`
	Name          string               `gorm:"type:text;not null"`
	Phone         *string              `gorm:"type:text"`
	Email         *string              `gorm:"type:text"`
	PipelineName  string               `gorm:"type:text;not null"`
	StatusName    string               `gorm:"type:text;not null"`
	CustomFields  dbtypes.FieldBag     `gorm:"type:jsonb"`
	TrelloCardID  *string              `gorm:"type:text"`
	TrelloCardURL *string              `gorm:"type:text"`
	SyncStatus    enums.LeadSyncStatus `gorm:"type:text;not null;default:'pending'"`
	SyncError     *string              `gorm:"type:text"`
	LastSyncAt    *time.Time           `gorm:"type:timestamptz"`
	CreatedAt     time.Time            `gorm:"type:timestamptz;default:now()"`
	UpdatedAt     time.Time            `gorm:"type:timestamptz;default:now()"`
}

func (KommoLead) TableName() string { return "kommo_leads" }
