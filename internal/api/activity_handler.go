package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/api/shared"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/service"
)

// ActivityHandler serves a task's audit trail.
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activityService *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger.With("component", "activity_handler"),
	}
}

// ListTaskActivities handles GET /api/tasks/{taskID}/activities.
// Records come back newest first; an optional limit query parameter caps the
// page, otherwise the full trail is returned.
func (h *ActivityHandler) ListTaskActivities(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	records, err := h.activityService.ListForTask(r.Context(), taskID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if records == nil {
		records = []*domain.ActivityRecord{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, records)
}
