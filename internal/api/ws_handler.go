package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/taskpulse/taskpulse-api/internal/config"
	"github.com/taskpulse/taskpulse-api/internal/events"
	"github.com/taskpulse/taskpulse-api/internal/presence"
)

// clientMessage is the inbound protocol: a join handshake binding the
// connection to a user, and subscribe/unsubscribe naming a channel (a
// project id or "self").
type clientMessage struct {
	Action  string    `json:"action"`
	UserID  uuid.UUID `json:"user_id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Channel string    `json:"channel,omitempty"`
}

const (
	actionJoin        = "join"
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	// channelSelf subscribes the connection to its bound user's channel.
	channelSelf = "self"

	// maxInboundBytes caps inbound frame size. The client protocol is a few
	// small JSON control messages; anything larger is abuse.
	maxInboundBytes = 4096
)

// WSHandler upgrades client connections and runs their read/write pumps.
// Each connection is one bus subscriber with a bounded outbound queue;
// events the queue cannot absorb are dropped for that connection only.
type WSHandler struct {
	bus      *events.Bus
	presence *presence.Tracker
	cfg      config.RealtimeConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(
	bus *events.Bus,
	tracker *presence.Tracker,
	cfg config.RealtimeConfig,
	logger *slog.Logger,
) *WSHandler {
	return &WSHandler{
		bus:      bus,
		presence: tracker,
		cfg:      cfg,
		logger:   logger.With("component", "ws_handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the upstream gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection handles GET /ws: it upgrades the request and serves the
// connection until the client goes away.
func (h *WSHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess := &session{
		id:       uuid.NewString(),
		conn:     conn,
		send:     make(chan *events.ChangeEvent, h.cfg.SendBufferSize),
		done:     make(chan struct{}),
		channels: make(map[events.Channel]struct{}),
		handler:  h,
	}

	h.bus.Register(sess)
	h.logger.Debug("connection opened", "connection_id", sess.id)

	go sess.writePump()
	sess.readPump()
}

// session is one live client connection: the bus subscriber, its channel
// subscriptions, and its optional presence binding.
type session struct {
	id      string
	conn    *websocket.Conn
	send    chan *events.ChangeEvent
	done    chan struct{}
	handler *WSHandler

	mu       sync.Mutex
	userID   uuid.UUID
	channels map[events.Channel]struct{}

	closeOnce sync.Once
}

// ID implements events.Subscriber.
func (s *session) ID() string {
	return s.id
}

// Deliver implements events.Subscriber. It never blocks: an event that does
// not fit the outbound queue, or arrives while the session is closing, is
// reported dropped.
func (s *session) Deliver(event *events.ChangeEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

// readPump consumes client messages until the connection dies, then tears
// the session down: unregister from the bus (which unsubscribes every
// channel) and release the presence binding.
func (s *session) readPump() {
	h := s.handler
	defer s.teardown()

	s.conn.SetReadLimit(maxInboundBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("connection read failed",
					"connection_id", s.id, "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("malformed client message",
				"connection_id", s.id, "error", err)
			continue
		}

		s.handleMessage(msg)
	}
}

func (s *session) handleMessage(msg clientMessage) {
	h := s.handler

	switch msg.Action {
	case actionJoin:
		if msg.UserID == uuid.Nil {
			return
		}
		s.mu.Lock()
		s.userID = msg.UserID
		s.mu.Unlock()
		h.presence.Join(s.id, msg.UserID, msg.Name)

	case actionSubscribe:
		channel, ok := s.resolveChannel(msg.Channel)
		if !ok {
			return
		}
		s.mu.Lock()
		if _, already := s.channels[channel]; already {
			s.mu.Unlock()
			return // repeated subscribe holds a single membership
		}
		s.channels[channel] = struct{}{}
		s.mu.Unlock()
		h.bus.Subscribe(s, channel)

	case actionUnsubscribe:
		channel, ok := s.resolveChannel(msg.Channel)
		if !ok {
			return
		}
		s.mu.Lock()
		if _, subscribed := s.channels[channel]; !subscribed {
			s.mu.Unlock()
			return
		}
		delete(s.channels, channel)
		s.mu.Unlock()
		h.bus.Unsubscribe(s.id, channel)

	default:
		h.logger.Debug("unknown client action",
			"connection_id", s.id, "action", msg.Action)
	}
}

// resolveChannel maps a wire channel name to a bus channel. "self" is the
// bound user's own channel and requires a prior join; anything else must be
// a project id, with or without the "project:" prefix.
func (s *session) resolveChannel(raw string) (events.Channel, bool) {
	if raw == channelSelf {
		s.mu.Lock()
		userID := s.userID
		s.mu.Unlock()
		if userID == uuid.Nil {
			return "", false
		}
		return events.UserChannel(userID), true
	}

	raw = strings.TrimPrefix(raw, "project:")
	projectID, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return events.ProjectChannel(projectID), true
}

// writePump drains the outbound queue to the wire and keeps the connection
// alive with pings. It is the only goroutine writing to the connection.
func (s *session) writePump() {
	h := s.handler
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case event := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// teardown releases everything the session holds. Safe to call once per
// connection lifetime; the bus and presence tracker both tolerate unknown
// ids, so a racing duplicate is harmless.
func (s *session) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.handler.bus.Unregister(s.id)
		s.handler.presence.Leave(s.id)
		_ = s.conn.Close()
		s.handler.logger.Debug("connection closed", "connection_id", s.id)
	})
}
