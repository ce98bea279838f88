package webhooks

import (
	"net/http"

	"github.com/doctorauto/patio-sync/api/responses"
	"github.com/doctorauto/patio-sync/api/validators"
	"github.com/doctorauto/patio-sync/internal/leads"
	"github.com/doctorauto/patio-sync/pkg/logger"
)

// KommoController turns CRM status-change deliveries into lead mirrors and,
// when the trigger status is hit, board cards.
type KommoController struct {
	svc  *leads.Service
	logg *logger.Logger
}

func NewKommoController(svc *leads.Service, logg *logger.Logger) *KommoController {
	return &KommoController{svc: svc, logg: logg}
}

// Test confirms the endpoint is reachable without going through the vendor.
func (c *KommoController) Test(w http.ResponseWriter, _ *http.Request) {
	responses.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "kommo webhook endpoint is reachable",
	})
}

// Receive handles one CRM webhook delivery.
func (c *KommoController) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload leads.WebhookPayload
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	result, err := c.svc.HandleWebhook(ctx, payload)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	body := map[string]any{
		"success":             true,
		"lead_id":             result.LeadID,
		"trello_card_created": result.CardCreated,
	}
	if result.CardID != "" {
		body["trello_card_id"] = result.CardID
		body["trello_card_url"] = result.CardURL
	}
	responses.WriteJSON(w, http.StatusOK, body)
}
