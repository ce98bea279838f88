// Package webhooks receives deliveries from the board and CRM vendors. The
// response shapes follow what each vendor expects rather than the standard
// envelope.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/doctorauto/patio-sync/api/responses"
	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/logger"
)

const trelloSignatureHeader = "X-Trello-Webhook"

// trelloAction is the slice of a webhook delivery the controller logs. The
// payload carries far more; everything unmodeled is ignored.
type trelloAction struct {
	Action struct {
		Type string `json:"type"`
		Data struct {
			Card struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"card"`
			List struct {
				Name string `json:"name"`
			} `json:"list"`
			ListBefore struct {
				Name string `json:"name"`
			} `json:"listBefore"`
			ListAfter struct {
				Name string `json:"name"`
			} `json:"listAfter"`
		} `json:"data"`
	} `json:"action"`
}

// TrelloController acknowledges board webhooks. Deliveries are logged for
// audit; the periodic reconciliation pass is the source of truth for state,
// so a lost delivery costs at most one interval of latency.
type TrelloController struct {
	secret   string
	callback string
	logg     *logger.Logger
}

func NewTrelloController(cfg config.TrelloConfig, logg *logger.Logger) *TrelloController {
	return &TrelloController{
		secret:   cfg.WebhookSecret,
		callback: cfg.WebhookCallback,
		logg:     logg,
	}
}

// Verify answers the HEAD probe the vendor sends when the webhook is created.
func (c *TrelloController) Verify(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Test confirms the endpoint is reachable without going through the vendor.
func (c *TrelloController) Test(w http.ResponseWriter, _ *http.Request) {
	responses.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "trello webhook endpoint is reachable",
	})
}

// Receive acknowledges a delivery. Unparseable or sparse payloads still get a
// 200 so the vendor does not disable the webhook over a payload drift.
func (c *TrelloController) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		responses.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}

	if c.secret != "" && !c.validSignature(body, r.Header.Get(trelloSignatureHeader)) {
		if c.logg != nil {
			c.logg.Warn(ctx, "webhook signature mismatch, rejecting delivery")
		}
		responses.WriteJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid signature"})
		return
	}

	var payload trelloAction
	_ = json.Unmarshal(body, &payload)

	actionType := payload.Action.Type
	if actionType == "" {
		actionType = "unknown"
	}
	cardName := payload.Action.Data.Card.Name
	if cardName == "" {
		cardName = "N/A"
	}
	listName := payload.Action.Data.ListAfter.Name
	if listName == "" {
		listName = payload.Action.Data.List.Name
	}
	if listName == "" {
		listName = "N/A"
	}

	if c.logg != nil {
		c.logg.Info(c.logg.WithFields(ctx, map[string]any{
			"action": actionType,
			"card":   cardName,
			"list":   listName,
		}), "board webhook received")
	}

	responses.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "webhook processed",
		"received": map[string]string{
			"action": actionType,
			"card":   cardName,
			"list":   listName,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// validSignature checks the vendor's HMAC-SHA1 of body plus callback URL.
func (c *TrelloController) validSignature(body []byte, header string) bool {
	if header == "" {
		return false
	}
	mac := hmac.New(sha1.New, []byte(c.secret))
	mac.Write(body)
	mac.Write([]byte(c.callback))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
