package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/doctorauto/patio-sync/internal/leads"
	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/db/models"
	"github.com/doctorauto/patio-sync/pkg/trello"
)

type noopLeadStore struct{}

func (noopLeadStore) FindByLeadID(context.Context, int64) (*models.KommoLead, error) {
	return nil, nil
}
func (noopLeadStore) Upsert(context.Context, *models.KommoLead) error        { return nil }
func (noopLeadStore) MarkSynced(context.Context, int64, string, string) error { return nil }
func (noopLeadStore) MarkError(context.Context, int64, string) error          { return nil }

type noopCardCreator struct{}

func (noopCardCreator) CreateCard(context.Context, trello.CreateCardParams) (*trello.Card, error) {
	return &trello.Card{ID: "card"}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	leadSvc := leads.NewService(noopLeadStore{}, noopCardCreator{}, cfg.Kommo, cfg.Trello, nil)
	return NewRouter(RouterParams{
		Config:      cfg,
		LeadService: leadSvc,
		Registry:    prometheus.NewRegistry(),
	})
}

func TestRouterHealthProbes(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterTrelloWebhookHead(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/api/webhook/trello", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterKommoWebhookBadPayload(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/kommo", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSyncRoutesAbsentWithoutJob(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
