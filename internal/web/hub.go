// Package web serves a read-only spectator feed. Browsers connect to
// /ws/{gameID} and receive one JSON frame per game event.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
)

const (
	sendBuffer  = 64
	queueBuffer = 256
	pingPeriod  = 30 * time.Second
)

// Summary is the public part of a board sent with each frame.
type Summary struct {
	State     string `json:"state"`
	WhoseTurn int    `json:"whose_turn"`
	Day       int    `json:"day"`
	Moves     int    `json:"moves"`
	Digest    int64  `json:"digest"`
	VP        []int  `json:"vp"`
	Gold      []int  `json:"gold"`
	Camels    []int  `json:"camels"`
	Cubes     []int  `json:"cubes"`
	GameOver  bool   `json:"game_over"`
	Winners   []int  `json:"winners,omitempty"`
}

// NewSummary reads the public counters off b.
func NewSummary(b *game.Board) *Summary {
	s := &Summary{
		State:     b.State().String(),
		WhoseTurn: b.WhoseTurn(),
		Day:       b.GameDay(),
		Moves:     b.MoveNumber(),
		Digest:    b.Digest(),
		GameOver:  b.GameOver(),
	}
	for p := 0; p < b.Players(); p++ {
		s.VP = append(s.VP, b.VP(p))
		s.Gold = append(s.Gold, b.Gold(p))
		s.Camels = append(s.Camels, b.Camels(p))
		s.Cubes = append(s.Cubes, b.Cubes(p))
	}
	if s.GameOver {
		s.Winners = b.Winners()
	}
	return s
}

// Frame is one message on the feed. The summary is read when the frame is
// sent, so it may already include later moves. Stale marks a frame whose
// summary digest differs from the digest carried by its event.
type Frame struct {
	Type    string       `json:"type"`
	GameID  string       `json:"game_id"`
	Event   events.Event `json:"event,omitempty"`
	Summary *Summary     `json:"summary,omitempty"`
	Stale   bool         `json:"stale,omitempty"`
}

// Boards looks up the live board of a game for the state summary.
type Boards func(gameID string) (*game.Board, bool)

type client struct {
	conn *websocket.Conn
	game string
	send chan []byte
}

// Hub fans game events out to websocket clients. It is an event bus
// subscriber. Events are queued and sent from a separate goroutine, since
// the bus delivers them while the session still holds its lock.
type Hub struct {
	id           string
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	boards       Boards
	logger       zerolog.Logger

	queue chan events.Event
	quit  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub creates a hub. boards may be nil, then frames carry no summary.
func NewHub(boards Boards, writeTimeout time.Duration, logger zerolog.Logger) *Hub {
	h := &Hub{
		id: "spectator_hub",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		boards:       boards,
		logger:       logger.With().Str("component", "web").Logger(),
		queue:        make(chan events.Event, queueBuffer),
		quit:         make(chan struct{}),
		clients:      make(map[string]map[*client]struct{}),
	}
	go h.dispatch()
	return h
}

func (h *Hub) ID() string { return h.id }

// InterestedIn skips rejected moves. They do not change the board.
func (h *Hub) InterestedIn(eventType string) bool {
	return eventType != events.TypeMoveRejected
}

// HandleEvent queues e for the spectators of its game.
func (h *Hub) HandleEvent(e events.Event) {
	if h.Spectators(e.GameID()) == 0 {
		return
	}
	select {
	case h.queue <- e:
	case <-h.quit:
	default:
		h.logger.Warn().Str("game_id", e.GameID()).Str("event_type", e.Type()).Msg("Spectator queue full, dropping event")
	}
}

func (h *Hub) dispatch() {
	for {
		select {
		case e := <-h.queue:
			h.broadcast(e)
		case <-h.quit:
			return
		}
	}
}

// broadcast sends e to every client of its game. A client whose buffer is
// full is dropped.
func (h *Hub) broadcast(e events.Event) {
	data, err := h.frame(e.Type(), e.GameID(), e)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", e.Type()).Msg("Failed to encode frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[e.GameID()] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("game_id", c.game).Str("remote", c.conn.RemoteAddr().String()).Msg("Spectator too slow, dropping")
			h.remove(c)
		}
	}
}

func (h *Hub) frame(typ, gameID string, e events.Event) ([]byte, error) {
	f := Frame{Type: typ, GameID: gameID, Event: e}
	if h.boards != nil {
		if b, ok := h.boards(gameID); ok {
			f.Summary = NewSummary(b)
		}
	}
	if d, ok := eventDigest(e); ok && f.Summary != nil {
		f.Stale = f.Summary.Digest != d
	}
	return json.Marshal(f)
}

// eventDigest is the board digest an event was published with, if any.
func eventDigest(e events.Event) (int64, bool) {
	switch ev := e.(type) {
	case *events.MoveExecutedEvent:
		return ev.Digest, true
	case *events.GameEndedEvent:
		return ev.Digest, true
	}
	return 0, false
}

// Spectators is the number of clients watching gameID.
func (h *Hub) Spectators(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[gameID])
}

// remove must be called with h.mu held.
func (h *Hub) remove(c *client) {
	set := h.clients[c.game]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.game)
	}
	close(c.send)
}

// Handler routes /ws/{gameID}.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{gameID}", h.serveWS)
	return mux
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if h.boards != nil {
		if _, ok := h.boards(gameID); !ok {
			http.Error(w, "unknown game", http.StatusNotFound)
			return
		}
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Unable to upgrade connection")
		return
	}
	c := &client{conn: conn, game: gameID, send: make(chan []byte, sendBuffer)}

	hello, err := h.frame("hello", gameID, nil)
	if err == nil {
		c.send <- hello
	}
	h.mu.Lock()
	if h.clients[gameID] == nil {
		h.clients[gameID] = make(map[*client]struct{})
	}
	h.clients[gameID][c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info().Str("game_id", gameID).Str("remote", conn.RemoteAddr().String()).Msg("Spectator connected")

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client messages and unregisters on close.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.remove(c)
		h.mu.Unlock()
		c.conn.Close()
		h.logger.Debug().Str("game_id", c.game).Msg("Spectator disconnected")
	}()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close stops the dispatcher and disconnects every spectator.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.quit) })
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.remove(c)
		}
	}
}

// Serve runs the feed on addr until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("addr", addr).Msg("Spectator feed listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
