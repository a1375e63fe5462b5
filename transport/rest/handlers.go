package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

const maxBodyBytes = 1 << 10

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Step *int `json:"step"`
}

type sessionResponse struct {
	Session     presenter.View        `json:"session"`
	Changed     bool                  `json:"changed"`
	Highlights  []tictactoe.Highlight `json:"highlights,omitempty"`
	HighlightMS int64                 `json:"highlight_ms,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	outcome, err := that.uGame.StartSession(r.Context())
	if err != nil {
		that.writeError(w, "handleStartSession", err)
		return
	}

	that.writeOutcome(w, http.StatusCreated, outcome)
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	outcome, err := that.uGame.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "handleGetSession", err)
		return
	}

	that.writeOutcome(w, http.StatusOK, outcome)
}

func (that *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.EndSession(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "handleEndSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil || req.Cell == nil {
		that.writeError(w, "handleMove", apperror.ErrInvalidPayload)
		return
	}

	outcome, err := that.uGame.MakeMove(r.Context(), r.PathValue("id"), *req.Cell)
	if err != nil {
		that.writeError(w, "handleMove", err)
		return
	}

	that.writeOutcome(w, http.StatusOK, outcome)
}

func (that *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decodeBody(w, r, &req); err != nil || req.Step == nil {
		that.writeError(w, "handleJump", apperror.ErrInvalidPayload)
		return
	}

	outcome, err := that.uGame.JumpTo(r.Context(), r.PathValue("id"), *req.Step)
	if err != nil {
		that.writeError(w, "handleJump", err)
		return
	}

	that.writeOutcome(w, http.StatusOK, outcome)
}

func (that *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	outcome, err := that.uGame.ToggleSort(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "handleSort", err)
		return
	}

	that.writeOutcome(w, http.StatusOK, outcome)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}

func (that *Server) writeOutcome(w http.ResponseWriter, status int, outcome *usecase.Outcome) {
	resp := sessionResponse{
		Session:    outcome.View,
		Changed:    outcome.Effect.Changed,
		Highlights: outcome.Effect.Highlights,
	}
	if len(resp.Highlights) > 0 {
		resp.HighlightMS = that.highlightDuration.Milliseconds()
	}

	that.writeJSON(w, status, resp)
}

func (that *Server) writeError(w http.ResponseWriter, method string, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		status = http.StatusNotFound
		message = apperror.ErrSessionNotFound.Error()
	case errors.Is(err, apperror.ErrInvalidPayload):
		status = http.StatusBadRequest
		message = apperror.ErrInvalidPayload.Error()
	default:
		that.logger.Error("request failed", "method", method, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
