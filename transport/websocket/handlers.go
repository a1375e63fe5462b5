package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

// connection is one client socket and the session it drives.
// sessionID is only touched by the goroutine reading the socket.
type connection struct {
	socket    *websocket.Conn
	sessionID string
}

// handleConnect resumes the session named in the payload or starts a new one.
func (that *Server) handleConnect(ctx context.Context, conn *connection, payload *RequestPayload) error {
	log := that.logger.With("method", "handleConnect")

	var (
		outcome *usecase.Outcome
		err     error
	)

	started := payload.SessionID == ""
	if started {
		outcome, err = that.uGame.StartSession(ctx)
	} else {
		outcome, err = that.uGame.GetSession(ctx, payload.SessionID)
	}

	if err != nil {
		return that.replyError(conn, actionConnect, err)
	}

	that.joinSession(ctx, conn, outcome.Session.ID, started)
	log.Info("client connected", "sessionID", conn.sessionID, "resumed", !started)

	return that.sendOutcome(conn, actionConnect, outcome)
}

func (that *Server) handleTurn(ctx context.Context, conn *connection, payload *RequestPayload) error {
	if payload.Cell == nil {
		return that.replyError(conn, actionTurn, apperror.ErrInvalidPayload)
	}

	return that.withSession(conn, actionTurn, func(id string) (*usecase.Outcome, error) {
		return that.uGame.MakeMove(ctx, id, *payload.Cell)
	})
}

func (that *Server) handleJump(ctx context.Context, conn *connection, payload *RequestPayload) error {
	if payload.Step == nil {
		return that.replyError(conn, actionJump, apperror.ErrInvalidPayload)
	}

	return that.withSession(conn, actionJump, func(id string) (*usecase.Outcome, error) {
		return that.uGame.JumpTo(ctx, id, *payload.Step)
	})
}

func (that *Server) handleSort(ctx context.Context, conn *connection, _ *RequestPayload) error {
	return that.withSession(conn, actionSort, func(id string) (*usecase.Outcome, error) {
		return that.uGame.ToggleSort(ctx, id)
	})
}

func (that *Server) handleView(ctx context.Context, conn *connection, _ *RequestPayload) error {
	return that.withSession(conn, actionView, func(id string) (*usecase.Outcome, error) {
		return that.uGame.GetSession(ctx, id)
	})
}

// withSession runs op against the connection's session and sends the result back.
func (that *Server) withSession(conn *connection, action string, op func(id string) (*usecase.Outcome, error)) error {
	if conn.sessionID == "" {
		return that.replyError(conn, action, apperror.ErrSessionNotFound)
	}

	outcome, err := op(conn.sessionID)
	if err != nil {
		return that.replyError(conn, action, err)
	}

	return that.sendOutcome(conn, action, outcome)
}

func (that *Server) sendOutcome(conn *connection, action string, outcome *usecase.Outcome) error {
	view := outcome.View

	payload := ResponsePayload{
		Session:    &view,
		Changed:    outcome.Effect.Changed,
		Highlights: outcome.Effect.Highlights,
	}
	if len(payload.Highlights) > 0 {
		payload.HighlightMS = that.highlightDuration.Milliseconds()
	}

	return that.sendMessage(conn, action, payload)
}

// replyError tells the client what went wrong. Errors the client caused are not returned.
func (that *Server) replyError(conn *connection, action string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.sendError(conn, action, apperror.ErrSessionNotFound.Error())
		return nil
	case errors.Is(err, apperror.ErrInvalidPayload):
		that.sendError(conn, action, apperror.ErrInvalidPayload.Error())
		return nil
	default:
		that.sendError(conn, action, "internal error")
		return err
	}
}

func (that *Server) sendError(conn *connection, action, message string) {
	if err := that.sendMessage(conn, action, ResponsePayload{Error: message}); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}

func (that *Server) sendMessage(conn *connection, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.socket.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
