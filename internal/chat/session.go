// Package chat implements the client side of per-item conversations: room
// history replay over REST, a single live WebSocket connection, and strict
// append-only rendering through a Display.
//
// A Session holds at most one live connection. Opening a different room
// tears the previous connection down first; opening the same room again
// reuses a healthy connection and only replays history. History fetch and
// connection establishment run independently — a slow or failed fetch never
// blocks the live connection, and vice versa. The two paths converge only on
// the shared Display, where every append lands in issuance order.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/campusmarket/market-client/internal/api"
	"github.com/campusmarket/market-client/internal/metrics"
	"github.com/campusmarket/market-client/internal/room"
)

// Display receives rendering commands from a Session. Self/other
// classification compares the message sender against the viewer's identity
// string; it is a rendering concern only. Implementations need no internal
// locking — the Session serializes all calls.
type Display interface {
	// Clear empties the message area.
	Clear()

	// Append renders one message at the bottom.
	Append(sender, text string, self bool)

	// ShowReauth replaces the message area with a log-in-again notice.
	ShowReauth()
}

// HistoryFetcher loads the ordered message log for a room. *api.Client
// satisfies it.
type HistoryFetcher interface {
	ChatHistory(ctx context.Context, id room.ID) ([]api.ChatMessage, error)
}

// Dialer opens the realtime connection for a room.
type Dialer func(ctx context.Context, id room.ID, identity string) (net.Conn, error)

// WSDialer returns the production dialer: a WebSocket connection to
// ws(s)://host/ws/{roomID}/{identity}.
func WSDialer(baseURL string) Dialer {
	base := strings.TrimRight(baseURL, "/")
	return func(ctx context.Context, id room.ID, identity string) (net.Conn, error) {
		addr := fmt.Sprintf("%s/ws/%s/%s", base, id, url.PathEscape(identity))
		conn, _, _, err := ws.Dial(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("chat: dial %s: %w", addr, err)
		}
		return conn, nil
	}
}

// SessionConfig wires a Session's collaborators.
type SessionConfig struct {
	Dial    Dialer
	History HistoryFetcher
	Display Display

	// Logger receives connection lifecycle and failure events. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Session is the chat session manager. All methods are safe for concurrent
// use.
type Session struct {
	dial    Dialer
	history HistoryFetcher
	display Display
	logger  *slog.Logger

	// dispMu serializes Display calls so history replay is atomic with
	// respect to live appends. Lock order: dispMu before mu.
	dispMu sync.Mutex

	// writeMu serializes outbound frames on the live connection.
	writeMu sync.Mutex

	mu       sync.Mutex
	conn     net.Conn
	roomID   room.ID
	identity string
	gen      uint64 // bumped by every OpenRoom; stale history results check it
}

// NewSession creates a Session.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		dial:    cfg.Dial,
		history: cfg.History,
		display: cfg.Display,
		logger:  logger,
	}
}

// OpenRoom switches the session to the given room. The message display is
// cleared synchronously; the history fetch and (unless a healthy connection
// to the same room already exists) the connection establishment are then
// started independently. A connection to a different room is closed first,
// so at most one live connection exists afterwards. Failures on either path
// are reported through the Display or the logger, never returned.
func (s *Session) OpenRoom(ctx context.Context, id room.ID, identity string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	reuse := s.conn != nil && s.roomID == id
	if s.conn != nil && !reuse {
		s.conn.Close()
		s.conn = nil
	}
	s.roomID = id
	s.identity = identity
	s.mu.Unlock()

	s.dispMu.Lock()
	s.display.Clear()
	s.dispMu.Unlock()

	go s.loadHistory(ctx, id, identity, gen)
	if !reuse {
		go s.connect(ctx, id, identity, gen)
	}
}

// Send transmits raw text over the live connection. Blank or whitespace-only
// input is a no-op; input sent while no connection is open is dropped. The
// message is rendered only when the server echoes it back — there is no
// optimistic local append.
func (s *Session) Send(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		metrics.FramesTotal.WithLabelValues("dropped").Inc()
		s.logger.Debug("chat send dropped, no live connection")
		return
	}

	s.writeMu.Lock()
	err := wsutil.WriteClientMessage(conn, ws.OpText, []byte(trimmed))
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Warn("chat send failed", "err", err)
		return
	}
	metrics.FramesTotal.WithLabelValues("sent").Inc()
}

// Close terminates the live connection if one is open. Safe to call
// repeatedly; OpenRoom invokes the same teardown when switching rooms.
func (s *Session) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// Connected reports whether a live connection is currently open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Room returns the most recently opened room, which is the zero ID before
// the first OpenRoom.
func (s *Session) Room() room.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// current reports whether gen is still the latest OpenRoom generation.
func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// loadHistory fetches and replays the room's message log. A result arriving
// after a newer OpenRoom is discarded, so an abandoned fetch can never
// render into the wrong room. On success the display is replaced with the
// fetched sequence; a 401 renders the re-authenticate notice; any other
// failure is logged and leaves the display as cleared by OpenRoom.
func (s *Session) loadHistory(ctx context.Context, id room.ID, identity string, gen uint64) {
	start := time.Now()
	msgs, err := s.history.ChatHistory(ctx, id)
	metrics.HistoryFetchDuration.Observe(time.Since(start).Seconds())

	s.dispMu.Lock()
	defer s.dispMu.Unlock()

	if !s.current(gen) {
		s.logger.Debug("discarding stale chat history", "room", id.String())
		return
	}
	if errors.Is(err, api.ErrUnauthorized) {
		s.display.ShowReauth()
		return
	}
	if err != nil {
		// Logged only; no user-facing notice on this path.
		s.logger.Warn("chat history load failed", "room", id.String(), "err", err)
		return
	}

	s.display.Clear()
	for _, m := range msgs {
		s.display.Append(m.Sender, m.Content, m.Sender == identity)
	}
}

// connect dials the room and installs the connection, unless a newer
// OpenRoom happened while dialing.
func (s *Session) connect(ctx context.Context, id room.ID, identity string, gen uint64) {
	conn, err := s.dial(ctx, id, identity)
	if err != nil {
		s.logger.Warn("chat connect failed", "room", id.String(), "err", err)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	metrics.LiveConnections.Inc()
	s.logger.Debug("chat connected", "room", id.String())
	go s.readLoop(conn, identity)
}

// readLoop renders inbound frames until the connection fails or is closed.
// There is no automatic reconnect: the handle is cleared and the next
// OpenRoom for the room starts fresh.
func (s *Session) readLoop(conn net.Conn, identity string) {
	defer metrics.LiveConnections.Dec()
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			if !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				s.logger.Debug("chat connection closed", "err", err)
			}
			return
		}

		sender, text, err := decodeFrame(data)
		if err != nil {
			s.logger.Debug("unreadable chat frame", "err", err)
			continue
		}
		metrics.FramesTotal.WithLabelValues("received").Inc()
		s.appendLive(conn, sender, text, sender == identity)
	}
}

// appendLive renders one inbound message, unless the connection has been
// replaced since the frame was read.
func (s *Session) appendLive(conn net.Conn, sender, text string, self bool) {
	s.dispMu.Lock()
	defer s.dispMu.Unlock()

	s.mu.Lock()
	live := s.conn == conn
	s.mu.Unlock()
	if !live {
		return
	}
	s.display.Append(sender, text, self)
}
