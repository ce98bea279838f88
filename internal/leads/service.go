package leads

import (
	"context"
	"fmt"
	"strings"

	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/db/models"
	dbtypes "github.com/doctorauto/patio-sync/pkg/db/types"
	"github.com/doctorauto/patio-sync/pkg/enums"
	pkgerrors "github.com/doctorauto/patio-sync/pkg/errors"
	"github.com/doctorauto/patio-sync/pkg/logger"
	"github.com/doctorauto/patio-sync/pkg/trello"
)

// WebhookPayload is the CRM webhook body. Only the first lead is processed;
// the CRM sends one status change per delivery.
type WebhookPayload struct {
	Leads []LeadPayload `json:"leads"`
}

// LeadPayload is one lead as delivered by the CRM webhook.
type LeadPayload struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	PipelineName string        `json:"pipeline_name"`
	StatusName   string        `json:"status_name"`
	CustomFields []CustomField `json:"custom_fields_values"`
}

// CustomField is a named CRM custom field with its values.
type CustomField struct {
	FieldName string             `json:"field_name"`
	Values    []CustomFieldValue `json:"values"`
}

type CustomFieldValue struct {
	Value any `json:"value"`
}

// WebhookResult summarizes what a webhook delivery did.
type WebhookResult struct {
	LeadID      int64
	CardCreated bool
	CardID      string
	CardURL     string
}

// CardCreator is the slice of the board API the service needs.
type CardCreator interface {
	CreateCard(ctx context.Context, params trello.CreateCardParams) (*trello.Card, error)
}

// LeadStore is the persistence surface the service needs.
type LeadStore interface {
	FindByLeadID(ctx context.Context, leadID int64) (*models.KommoLead, error)
	Upsert(ctx context.Context, lead *models.KommoLead) error
	MarkSynced(ctx context.Context, leadID int64, cardID, cardURL string) error
	MarkError(ctx context.Context, leadID int64, message string) error
}

// Service persists incoming CRM leads and creates a board card the first time
// a lead reaches the configured trigger pipeline and status.
type Service struct {
	store           LeadStore
	board           CardCreator
	logg            *logger.Logger
	triggerPipeline string
	triggerStatus   string
	scheduledListID string
}

func NewService(store LeadStore, board CardCreator, kommoCfg config.KommoConfig, trelloCfg config.TrelloConfig, logg *logger.Logger) *Service {
	return &Service{
		store:           store,
		board:           board,
		logg:            logg,
		triggerPipeline: kommoCfg.TriggerPipeline,
		triggerStatus:   kommoCfg.TriggerStatus,
		scheduledListID: trelloCfg.ScheduledListID,
	}
}

// HandleWebhook mirrors the delivered lead locally and, when the lead entered
// the trigger status for the first time, creates its board card. Card
// creation failures are recorded on the lead and do not fail the delivery,
// so the CRM does not retry a webhook the mirror already absorbed.
func (s *Service) HandleWebhook(ctx context.Context, payload WebhookPayload) (*WebhookResult, error) {
	if len(payload.Leads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload carries no leads")
	}
	incoming := payload.Leads[0]
	if incoming.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id is required")
	}

	if s.logg != nil {
		ctx = s.logg.WithLeadID(ctx, incoming.ID)
	}

	existing, err := s.store.FindByLeadID(ctx, incoming.ID)
	if err != nil {
		return nil, err
	}

	lead := buildLead(incoming)
	if err := s.store.Upsert(ctx, lead); err != nil {
		return nil, err
	}

	result := &WebhookResult{LeadID: incoming.ID}

	if !s.isTrigger(incoming) {
		return result, nil
	}
	if existing != nil && existing.TrelloCardID != nil {
		if s.logg != nil {
			s.logg.Info(ctx, "lead already has a card, skipping creation")
		}
		return result, nil
	}

	card, err := s.createCard(ctx, lead)
	if err != nil {
		if markErr := s.store.MarkError(ctx, incoming.ID, err.Error()); markErr != nil && s.logg != nil {
			s.logg.Error(ctx, "recording card creation failure", markErr)
		}
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "card creation failed")
		}
		return result, nil
	}

	if err := s.store.MarkSynced(ctx, incoming.ID, card.ID, card.URL); err != nil {
		return nil, err
	}

	result.CardCreated = true
	result.CardID = card.ID
	result.CardURL = card.URL
	if s.logg != nil {
		s.logg.Info(s.logg.WithCardID(ctx, card.ID), "card created for lead")
	}
	return result, nil
}

// isTrigger requires both fields to match the configured pair exactly; case
// variants come from a misconfigured CRM stage and must not create cards.
func (s *Service) isTrigger(lead LeadPayload) bool {
	return lead.PipelineName == s.triggerPipeline && lead.StatusName == s.triggerStatus
}

func (s *Service) createCard(ctx context.Context, lead *models.KommoLead) (*trello.Card, error) {
	if s.scheduledListID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled list id is not configured")
	}

	desc := fmt.Sprintf("Lead Kommo #%d", lead.KommoLeadID)
	if lead.Phone != nil {
		desc += "\nTelefone: " + *lead.Phone
	}
	if lead.Email != nil {
		desc += "\nEmail: " + *lead.Email
	}

	return s.board.CreateCard(ctx, trello.CreateCardParams{
		Name:   lead.Name,
		Desc:   desc,
		IDList: s.scheduledListID,
		Pos:    "top",
	})
}

func buildLead(payload LeadPayload) *models.KommoLead {
	lead := &models.KommoLead{
		KommoLeadID:  payload.ID,
		Name:         payload.Name,
		PipelineName: payload.PipelineName,
		StatusName:   payload.StatusName,
		CustomFields: fieldBag(payload.CustomFields),
		SyncStatus:   enums.LeadSyncPending,
	}
	if phone := firstFieldValue(payload.CustomFields, "Telefone", "Phone"); phone != "" {
		lead.Phone = &phone
	}
	if email := firstFieldValue(payload.CustomFields, "Email", "E-mail"); email != "" {
		lead.Email = &email
	}
	return lead
}

func fieldBag(fields []CustomField) dbtypes.FieldBag {
	bag := dbtypes.FieldBag{}
	for _, field := range fields {
		if field.FieldName == "" || len(field.Values) == 0 {
			continue
		}
		switch v := field.Values[0].Value.(type) {
		case string:
			bag[field.FieldName] = dbtypes.StringValue(v)
		case float64:
			bag[field.FieldName] = dbtypes.NumberValue(v)
		}
	}
	return bag
}

func firstFieldValue(fields []CustomField, names ...string) string {
	for _, field := range fields {
		for _, name := range names {
			if !strings.EqualFold(field.FieldName, name) {
				continue
			}
			if len(field.Values) == 0 {
				continue
			}
			if s, ok := field.Values[0].Value.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
