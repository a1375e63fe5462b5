package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

const (
	shutdownTimeout = 5 * time.Second
	writeWait       = time.Second

	// maxMessageBytes caps a single client frame.
	maxMessageBytes = 1 << 10
)

type uGame interface {
	StartSession(ctx context.Context) (*usecase.Outcome, error)
	GetSession(ctx context.Context, id string) (*usecase.Outcome, error)
	EndSession(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*usecase.Outcome, error)
	JumpTo(ctx context.Context, id string, step int) (*usecase.Outcome, error)
	ToggleSort(ctx context.Context, id string) (*usecase.Outcome, error)
}

type handlerFunc func(ctx context.Context, conn *connection, payload *RequestPayload) error

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	upgrader websocket.Upgrader

	highlightDuration time.Duration

	handlers map[string]handlerFunc

	mu       sync.Mutex
	conns    map[*connection]struct{}
	sessions map[string]*attachment
	closed   bool
	active   sync.WaitGroup
}

// attachment counts the sockets bound to one session.
// owned is set when one of them started the session; only such sessions are ended once the last socket leaves.
type attachment struct {
	conns int
	owned bool
}

func New(logger *slog.Logger, uGame uGame, highlightDuration time.Duration) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		highlightDuration: highlightDuration,

		handlers: make(map[string]handlerFunc),

		conns:    make(map[*connection]struct{}),
		sessions: make(map[string]*attachment),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionTurn] = server.handleTurn
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionSort] = server.handleSort
	server.handlers[actionView] = server.handleView

	return server
}

// Handler returns the /ws route. Open sockets are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	context.AfterFunc(ctx, that.closeAll)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// hijacked sockets are not tracked by Shutdown
	<-shutdownDone
	that.closeAll()
	that.active.Wait()

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	socket, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	socket.SetReadLimit(maxMessageBytes)

	conn := &connection{socket: socket}
	if !that.track(conn) {
		log.Info("server is shutting down, rejecting connection")
		that.goAway(conn)
		return
	}
	defer that.closeConnection(ctx, conn)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Info("connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client until the socket closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.socket.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(conn, actionError, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(conn, message.Action, "unknown action")
			continue
		}

		var payload RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				log.Warn("failed to unmarshal payload", "error", err)
				that.sendError(conn, message.Action, "invalid payload")
				continue
			}
		}

		if err = handler(ctx, conn, &payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// closeConnection detaches the connection from its session and closes the socket.
// The session is ended when no other socket uses it and this server started it.
func (that *Server) closeConnection(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "closeConnection")

	that.leaveSession(context.WithoutCancel(ctx), conn)

	if err := conn.socket.Close(); err != nil {
		log.Debug("failed to close socket", "error", err)
	}

	that.untrack(conn)
}

// joinSession binds the connection to id and releases the session it held before.
func (that *Server) joinSession(ctx context.Context, conn *connection, id string, started bool) {
	if conn.sessionID == id {
		return
	}

	that.leaveSession(ctx, conn)

	that.mu.Lock()
	defer that.mu.Unlock()

	a, ok := that.sessions[id]
	if !ok {
		a = &attachment{}
		that.sessions[id] = a
	}
	a.conns++
	a.owned = a.owned || started

	conn.sessionID = id
}

// leaveSession unbinds the connection from its session.
func (that *Server) leaveSession(ctx context.Context, conn *connection) {
	id := conn.sessionID
	if id == "" {
		return
	}
	conn.sessionID = ""

	that.mu.Lock()
	end := false
	if a, ok := that.sessions[id]; ok {
		a.conns--
		if a.conns == 0 {
			delete(that.sessions, id)
			end = a.owned
		}
	}
	that.mu.Unlock()

	if !end {
		return
	}

	if err := that.uGame.EndSession(ctx, id); err != nil {
		that.logger.Warn("failed to end session", "sessionID", id, "error", err)
	}
}

func (that *Server) track(conn *connection) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	that.conns[conn] = struct{}{}
	that.active.Add(1)

	return true
}

func (that *Server) untrack(conn *connection) {
	that.mu.Lock()
	_, ok := that.conns[conn]
	delete(that.conns, conn)
	that.mu.Unlock()

	if ok {
		that.active.Done()
	}
}

// closeAll refuses new sockets and closes the open ones, which ends their read loops.
func (that *Server) closeAll() {
	that.mu.Lock()
	that.closed = true
	conns := make([]*connection, 0, len(that.conns))
	for conn := range that.conns {
		conns = append(conns, conn)
	}
	that.mu.Unlock()

	for _, conn := range conns {
		that.goAway(conn)
	}
}

// goAway sends a close frame and drops the socket.
func (that *Server) goAway(conn *connection) {
	message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down")
	if err := conn.socket.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait)); err != nil {
		that.logger.Debug("failed to send close frame", "error", err)
	}

	if err := conn.socket.Close(); err != nil {
		that.logger.Debug("failed to close socket", "error", err)
	}
}
