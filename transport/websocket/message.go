package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	actionConnect = "connect"
	actionTurn    = "game:turn"
	actionJump    = "game:jump"
	actionSort    = "game:sort"
	actionView    = "game:view"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	Step      *int   `json:"step,omitempty"`
}

type ResponsePayload struct {
	Session     *presenter.View       `json:"session,omitempty"`
	Changed     bool                  `json:"changed,omitempty"`
	Highlights  []tictactoe.Highlight `json:"highlights,omitempty"`
	HighlightMS int64                 `json:"highlight_ms,omitempty"`
	Error       string                `json:"error,omitempty"`
}
