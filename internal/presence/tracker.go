// Package presence maintains the set of currently connected users.
//
// A user is online while at least one live connection is bound to them, so
// the tracker keeps a reference count per user rather than a flag per
// connection: opening a second tab must not re-announce the user, and
// closing one of two tabs must not mark them offline.
package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/events"
)

// Tracker owns the connection-to-user registry and publishes userOnline /
// userOffline transitions through the event router.
type Tracker struct {
	mu     sync.Mutex
	conns  map[string]uuid.UUID // connection id -> bound user
	counts map[uuid.UUID]int    // user -> live connection count
	names  map[uuid.UUID]string // display names captured at join

	router *events.Router
	logger *slog.Logger
}

// NewTracker creates an empty Tracker publishing through router.
func NewTracker(router *events.Router, logger *slog.Logger) *Tracker {
	return &Tracker{
		conns:  make(map[string]uuid.UUID),
		counts: make(map[uuid.UUID]int),
		names:  make(map[uuid.UUID]string),
		router: router,
		logger: logger.With("component", "presence_tracker"),
	}
}

// Join binds a connection to a user. If this is the user's first live
// connection, the user goes online and a userOnline event is broadcast.
// Rebinding an already-bound connection to a different user releases the
// previous binding first.
func (t *Tracker) Join(connectionID string, userID uuid.UUID, name string) {
	t.mu.Lock()

	var wentOffline uuid.UUID
	if prev, ok := t.conns[connectionID]; ok {
		if prev == userID {
			t.mu.Unlock()
			return
		}
		wentOffline = t.release(connectionID, prev)
	}

	t.conns[connectionID] = userID
	t.counts[userID]++
	if name != "" {
		t.names[userID] = name
	}
	first := t.counts[userID] == 1

	t.mu.Unlock()

	if wentOffline != uuid.Nil {
		t.router.UserOffline(wentOffline)
	}
	if first {
		t.logger.Debug("user online", "user_id", userID)
		t.router.UserOnline(userID, name)
	}
}

// Leave unbinds a connection. If it was the user's last live connection, the
// user goes offline and a userOffline event is broadcast exactly once.
// Unknown or never-bound connections are a no-op.
func (t *Tracker) Leave(connectionID string) {
	t.mu.Lock()
	userID, ok := t.conns[connectionID]
	var wentOffline uuid.UUID
	if ok {
		wentOffline = t.release(connectionID, userID)
	}
	t.mu.Unlock()

	if wentOffline != uuid.Nil {
		t.logger.Debug("user offline", "user_id", wentOffline)
		t.router.UserOffline(wentOffline)
	}
}

// release drops one reference and reports the user who went offline, if any.
// Caller must hold t.mu.
func (t *Tracker) release(connectionID string, userID uuid.UUID) uuid.UUID {
	delete(t.conns, connectionID)
	t.counts[userID]--
	if t.counts[userID] > 0 {
		return uuid.Nil
	}
	delete(t.counts, userID)
	delete(t.names, userID)
	return userID
}

// ListOnline returns the IDs of all currently online users.
func (t *Tracker) ListOnline() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	online := make([]uuid.UUID, 0, len(t.counts))
	for userID := range t.counts {
		online = append(online, userID)
	}
	return online
}

// IsOnline reports whether the user has at least one live connection.
func (t *Tracker) IsOnline(userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[userID] > 0
}
