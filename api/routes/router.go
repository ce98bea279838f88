package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doctorauto/patio-sync/api/controllers"
	webhookcontrollers "github.com/doctorauto/patio-sync/api/controllers/webhooks"
	"github.com/doctorauto/patio-sync/api/middleware"
	"github.com/doctorauto/patio-sync/internal/leads"
	syncsvc "github.com/doctorauto/patio-sync/internal/sync"
	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/db"
	"github.com/doctorauto/patio-sync/pkg/logger"
	"github.com/doctorauto/patio-sync/pkg/redis"
)

// RouterParams collects everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	LeadService *leads.Service
	SyncJob     *syncsvc.Job
	Registry    *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	var redisPinger controllers.Pinger
	if params.Redis != nil {
		redisPinger = params.Redis
	}
	health := controllers.NewHealthController(params.DB, redisPinger)
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.Live)
		r.Get("/ready", health.Ready)
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	trelloWebhook := webhookcontrollers.NewTrelloController(params.Config.Trello, params.Logger)
	kommoWebhook := webhookcontrollers.NewKommoController(params.LeadService, params.Logger)

	r.Route("/api/webhook", func(r chi.Router) {
		r.Head("/trello", trelloWebhook.Verify)
		r.Post("/trello", trelloWebhook.Receive)
		r.Get("/trello/test", trelloWebhook.Test)
		r.Post("/kommo", kommoWebhook.Receive)
		r.Get("/kommo/test", kommoWebhook.Test)
	})

	if params.SyncJob != nil {
		syncController := controllers.NewSyncController(params.SyncJob, params.Logger)
		r.Route("/api/sync", func(r chi.Router) {
			r.Post("/run", syncController.Run)
			r.Get("/status", syncController.Status)
		})
	}

	return r
}
