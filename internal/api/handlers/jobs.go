package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mwt/signals/internal/schedule"
	"github.com/mwt/signals/pkg/logger"
)

// JobHandler serves scheduler job status and manual triggers.
type JobHandler struct {
	scheduler *schedule.Scheduler
	logger    *logger.Logger
}

// NewJobHandler builds the handler. scheduler may be nil when not
// running in daemon mode.
func NewJobHandler(sched *schedule.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{scheduler: sched, logger: log}
}

// Status lists registered jobs with their run history.
// GET /api/v1/jobs
func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler is not running")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.Status(),
	})
}

// Trigger runs a registered job immediately.
// POST /api/v1/jobs/{name}/trigger
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler is not running")
		return
	}

	name := mux.Vars(r)["name"]
	if err := h.scheduler.TriggerJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
