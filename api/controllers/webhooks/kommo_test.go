package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doctorauto/patio-sync/internal/leads"
	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/db/models"
	"github.com/doctorauto/patio-sync/pkg/trello"
)

type memoryLeadStore struct {
	leads map[int64]*models.KommoLead
}

func newMemoryLeadStore() *memoryLeadStore {
	return &memoryLeadStore{leads: map[int64]*models.KommoLead{}}
}

func (s *memoryLeadStore) FindByLeadID(_ context.Context, leadID int64) (*models.KommoLead, error) {
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, nil
	}
	copied := *lead
	return &copied, nil
}

func (s *memoryLeadStore) Upsert(_ context.Context, lead *models.KommoLead) error {
	if existing, ok := s.leads[lead.KommoLeadID]; ok {
		existing.Name = lead.Name
		existing.PipelineName = lead.PipelineName
		existing.StatusName = lead.StatusName
		existing.Phone = lead.Phone
		existing.Email = lead.Email
		return nil
	}
	copied := *lead
	s.leads[lead.KommoLeadID] = &copied
	return nil
}

func (s *memoryLeadStore) MarkSynced(_ context.Context, leadID int64, cardID, cardURL string) error {
	lead := s.leads[leadID]
	lead.TrelloCardID = &cardID
	lead.TrelloCardURL = &cardURL
	return nil
}

func (s *memoryLeadStore) MarkError(_ context.Context, leadID int64, message string) error {
	lead := s.leads[leadID]
	lead.SyncError = &message
	return nil
}

type stubCardCreator struct {
	card *trello.Card
	err  error
}

func (s *stubCardCreator) CreateCard(context.Context, trello.CreateCardParams) (*trello.Card, error) {
	return s.card, s.err
}

func newKommoController(board *stubCardCreator) *KommoController {
	svc := leads.NewService(
		newMemoryLeadStore(),
		board,
		config.KommoConfig{TriggerPipeline: "Dr. Prime", TriggerStatus: "Agendamento Confirmado"},
		config.TrelloConfig{ScheduledListID: "list-1"},
		nil,
	)
	return NewKommoController(svc, nil)
}

func TestKommoReceiveRejectsMissingLeads(t *testing.T) {
	controller := newKommoController(&stubCardCreator{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kommo", strings.NewReader(`{}`))
	controller.Receive(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKommoReceiveReportsCardCreation(t *testing.T) {
	controller := newKommoController(&stubCardCreator{
		card: &trello.Card{ID: "card-7", URL: "https://trello.com/c/card-7"},
	})

	payload := `{"leads":[{"id":42,"name":"Maria","pipeline_name":"Dr. Prime","status_name":"Agendamento Confirmado"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kommo", strings.NewReader(payload))
	controller.Receive(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(42), body["lead_id"])
	require.Equal(t, true, body["trello_card_created"])
	require.Equal(t, "card-7", body["trello_card_id"])
}

func TestKommoReceiveOutsideTriggerReturnsSuccessWithoutCard(t *testing.T) {
	controller := newKommoController(&stubCardCreator{})

	payload := `{"leads":[{"id":43,"name":"José","pipeline_name":"Dr. Prime","status_name":"Primeiro Contato"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kommo", strings.NewReader(payload))
	controller.Receive(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["trello_card_created"])
	require.NotContains(t, body, "trello_card_id")
}
