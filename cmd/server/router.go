package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskpulse/taskpulse-api/internal/api"
	apiMiddleware "github.com/taskpulse/taskpulse-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	activityHandler := api.NewActivityHandler(app.activityService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	wsHandler := api.NewWSHandler(app.bus, app.presence, app.config.Realtime, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.Identity)

		r.Get("/tasks/{taskID}/activities", activityHandler.ListTaskActivities)

		r.Get("/notifications", notificationHandler.ListNotifications)
		r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
		r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
		r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
		r.Delete("/notifications/{id}", notificationHandler.DeleteNotification)
	})

	// The websocket endpoint authenticates through its join handshake, not
	// the identity header, so it sits outside the /api group.
	r.Get("/ws", wsHandler.HandleConnection)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
