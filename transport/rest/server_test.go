package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemorySessionRepository())

	srv := httptest.NewServer(New(logger, manager, 2*time.Second).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func decodeSession(t *testing.T, data []byte) sessionResponse {
	t.Helper()

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(data, &resp))

	return resp
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/ping", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Given: a started session
	resp, body := do(t, http.MethodPost, srv.URL+"/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	started := decodeSession(t, body)
	require.NotEmpty(t, started.Session.ID)
	sessionURL := srv.URL + "/sessions/" + started.Session.ID

	// When: X plays the center
	resp, body = do(t, http.MethodPost, sessionURL+"/moves", `{"cell":4}`)

	// Then: the board shows X and O is next
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decodeSession(t, body)
	assert.True(t, moved.Changed)
	assert.Equal(t, "X", moved.Session.Board[4])
	assert.Equal(t, "Next player: O", moved.Session.StatusText)

	// When: O plays the same cell
	resp, body = do(t, http.MethodPost, sessionURL+"/moves", `{"cell":4}`)

	// Then: the move is ignored without an error
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeSession(t, body).Changed)

	// When: jumping to step 1
	resp, body = do(t, http.MethodPost, sessionURL+"/jump", `{"step":1}`)

	// Then: the played cell is highlighted for the configured time
	require.Equal(t, http.StatusOK, resp.StatusCode)
	jumped := decodeSession(t, body)
	assert.Equal(t, []tictactoe.Highlight{{Kind: tictactoe.HighlightMove, Cells: []int{4}}}, jumped.Highlights)
	assert.Equal(t, int64(2000), jumped.HighlightMS)

	// When: toggling the sort order
	resp, body = do(t, http.MethodPost, sessionURL+"/sort", "")

	// Then: the latest move is listed first
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sorted := decodeSession(t, body)
	assert.True(t, sorted.Session.ReverseSort)
	assert.Equal(t, 1, sorted.Session.Moves[0].Step)

	// When: reading the session
	resp, body = do(t, http.MethodGet, sessionURL, "")

	// Then: the stored state is returned
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sorted.Session, decodeSession(t, body).Session)

	// When: ending the session
	resp, _ = do(t, http.MethodDelete, sessionURL, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Then: it is gone
	resp, _ = do(t, http.MethodGet, sessionURL, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Unknown session", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, srv.URL+"/sessions/missing/moves", `{"cell":0}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"session not found"}`, string(body))
	})

	t.Run("Bad body", func(t *testing.T) {
		_, body := do(t, http.MethodPost, srv.URL+"/sessions", "")
		id := decodeSession(t, body).Session.ID

		for _, payload := range []string{``, `{}`, `{"cell":"a"}`, `{"cell":1,"extra":true}`} {
			resp, body := do(t, http.MethodPost, srv.URL+"/sessions/"+id+"/moves", payload)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, payload)
			assert.JSONEq(t, `{"error":"invalid payload"}`, string(body))
		}

		resp, _ := do(t, http.MethodPost, srv.URL+"/sessions/"+id+"/jump", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Wrong method", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, srv.URL+"/sessions/x/moves", "")

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestStart(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemorySessionRepository())

	// Given: a running server
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(logger, manager, time.Second).Start(ctx, "0")
	}()

	// When: its context is canceled
	cancel()

	// Then: Start returns once the server has shut down
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
