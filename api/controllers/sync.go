package controllers

import (
	"net/http"

	"github.com/doctorauto/patio-sync/api/responses"
	syncsvc "github.com/doctorauto/patio-sync/internal/sync"
	"github.com/doctorauto/patio-sync/pkg/logger"
)

// SyncController exposes the manual reconciliation trigger and the status of
// the latest pass.
type SyncController struct {
	job  *syncsvc.Job
	logg *logger.Logger
}

func NewSyncController(job *syncsvc.Job, logg *logger.Logger) *SyncController {
	return &SyncController{job: job, logg: logg}
}

// Run executes a full reconciliation pass inline. Operators hit this after
// fixing a card by hand instead of waiting for the next scheduled cycle.
func (c *SyncController) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := c.job.Run(ctx); err != nil {
		// Partial passes still update the status snapshot; surface the
		// aggregate error to the caller.
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, c.job.Status())
}

// Status reports the snapshot of the most recent pass.
func (c *SyncController) Status(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, c.job.Status())
}
