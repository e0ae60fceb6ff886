package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpulse/taskpulse-api/internal/api"
	apimiddleware "github.com/taskpulse/taskpulse-api/internal/api/middleware"
	"github.com/taskpulse/taskpulse-api/internal/domain"
	"github.com/taskpulse/taskpulse-api/internal/events"
	"github.com/taskpulse/taskpulse-api/internal/mocks"
	"github.com/taskpulse/taskpulse-api/internal/service"
)

type notificationHarness struct {
	router  http.Handler
	service *service.NotificationService
	store   *mocks.NotificationStore
}

func newNotificationHarness() *notificationHarness {
	logger := testLogger()
	bus := events.NewBus(logger)
	notificationStore := mocks.NewNotificationStore()
	svc := service.NewNotificationService(notificationStore, events.NewRouter(bus, logger), logger)
	handler := api.NewNotificationHandler(svc, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(apimiddleware.Identity)
		r.Get("/api/notifications", handler.ListNotifications)
		r.Get("/api/notifications/unread-count", handler.UnreadCount)
		r.Patch("/api/notifications/{id}/read", handler.MarkRead)
		r.Post("/api/notifications/read-all", handler.MarkAllRead)
		r.Delete("/api/notifications/{id}", handler.DeleteNotification)
	})

	return &notificationHarness{router: r, service: svc, store: notificationStore}
}

func (h *notificationHarness) seed(t *testing.T, recipient uuid.UUID) *domain.Notification {
	t.Helper()
	notification, err := h.service.Notify(context.Background(),
		domain.NotificationTaskComment, recipient, uuid.New(), uuid.New(), "")
	require.NoError(t, err)
	require.NotNil(t, notification)
	return notification
}

func (h *notificationHarness) do(method, path string, asUser uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if asUser != uuid.Nil {
		req.Header.Set("X-User-ID", asUser.String())
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func TestListNotifications(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	harness := newNotificationHarness()
	harness.seed(t, userID)
	harness.seed(t, userID)
	harness.seed(t, uuid.New()) // someone else's

	rr := harness.do(http.MethodGet, "/api/notifications", userID)

	require.Equal(t, http.StatusOK, rr.Code)
	var notifications []*domain.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notifications))
	assert.Len(t, notifications, 2, "only the requester's notifications come back")
}

func TestListNotificationsEmptyIsArray(t *testing.T) {
	t.Parallel()

	harness := newNotificationHarness()
	rr := harness.do(http.MethodGet, "/api/notifications", uuid.New())

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestUnreadCount(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	harness := newNotificationHarness()
	harness.seed(t, userID)
	harness.seed(t, userID)

	rr := harness.do(http.MethodGet, "/api/notifications/unread-count", userID)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count": 2}`, rr.Body.String())
}

func TestMarkReadEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	harness := newNotificationHarness()
	created := harness.seed(t, userID)

	t.Run("recipient marks read", func(t *testing.T) {
		rr := harness.do(http.MethodPatch, "/api/notifications/"+created.ID.String()+"/read", userID)

		require.Equal(t, http.StatusOK, rr.Code)
		var updated domain.Notification
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.True(t, updated.Read)
	})

	t.Run("another user gets 403", func(t *testing.T) {
		rr := harness.do(http.MethodPatch, "/api/notifications/"+created.ID.String()+"/read", uuid.New())
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		rr := harness.do(http.MethodPatch, "/api/notifications/"+uuid.NewString()+"/read", userID)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id gets 400", func(t *testing.T) {
		rr := harness.do(http.MethodPatch, "/api/notifications/nope/read", userID)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMarkAllReadEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	harness := newNotificationHarness()
	harness.seed(t, userID)
	harness.seed(t, userID)

	rr := harness.do(http.MethodPost, "/api/notifications/read-all", userID)
	require.Equal(t, http.StatusOK, rr.Code)

	count := harness.do(http.MethodGet, "/api/notifications/unread-count", userID)
	assert.JSONEq(t, `{"count": 0}`, count.Body.String())

	// Idempotent: a second pass still succeeds.
	again := harness.do(http.MethodPost, "/api/notifications/read-all", userID)
	assert.Equal(t, http.StatusOK, again.Code)
}

func TestDeleteNotificationEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	harness := newNotificationHarness()
	created := harness.seed(t, userID)

	t.Run("another user gets 403", func(t *testing.T) {
		rr := harness.do(http.MethodDelete, "/api/notifications/"+created.ID.String(), uuid.New())
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("recipient deletes", func(t *testing.T) {
		rr := harness.do(http.MethodDelete, "/api/notifications/"+created.ID.String(), userID)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, harness.store.ForRecipient(userID))
	})

	t.Run("gone afterwards", func(t *testing.T) {
		rr := harness.do(http.MethodDelete, "/api/notifications/"+created.ID.String(), userID)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestNotificationEndpointsRequireIdentity(t *testing.T) {
	t.Parallel()

	harness := newNotificationHarness()

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/notifications/unread-count"},
		{http.MethodPatch, "/api/notifications/" + uuid.NewString() + "/read"},
		{http.MethodPost, "/api/notifications/read-all"},
		{http.MethodDelete, "/api/notifications/" + uuid.NewString()},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			t.Parallel()

			rr := harness.do(tc.method, tc.path, uuid.Nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}
