package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hexmind/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func getStatus(t *testing.T, srv *Server) statusResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var status statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	return status
}

func TestNewGame(t *testing.T) {
	t.Run("starting a game resets the session to the requested tier", func(t *testing.T) {
		srv := New()
		w := postJSON(t, srv, "/api/new", newGameRequest{Tier: "easy"})

		require.Equal(t, http.StatusOK, w.Code)
		status := getStatus(t, srv)
		require.Equal(t, "easy", status.Tier)
		require.Equal(t, 0, status.Turn)
		require.Equal(t, game.Empty.String(), status.Winner)
		require.Nil(t, status.LastMove)
	})

	t.Run("an unknown tier is rejected", func(t *testing.T) {
		w := postJSON(t, New(), "/api/new", newGameRequest{Tier: "nightmare"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMove(t *testing.T) {
	t.Run("a legal move gets an engine reply in the same response", func(t *testing.T) {
		srv := New()
		postJSON(t, srv, "/api/new", newGameRequest{Tier: "easy"})

		w := postJSON(t, srv, "/api/move", moveRequest{Row: 5, Col: 5})
		require.Equal(t, http.StatusOK, w.Code)

		var resp moveResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.EngineMove, "The engine must answer a live position")
		require.NotEmpty(t, resp.Rationale)
		require.Equal(t, 2, resp.Turn, "Both placements advance the turn counter")

		board, err := game.Decode(resp.Encoded)
		require.NoError(t, err)
		require.Equal(t, game.Red, board.Get(5, 5))
		require.Equal(t, game.Blue, board.Get(resp.EngineMove.Row, resp.EngineMove.Col))
	})

	t.Run("an occupied cell is rejected and the board stays put", func(t *testing.T) {
		srv := New()
		postJSON(t, srv, "/api/new", newGameRequest{Tier: "easy"})
		postJSON(t, srv, "/api/move", moveRequest{Row: 5, Col: 5})

		before := getStatus(t, srv)
		w := postJSON(t, srv, "/api/move", moveRequest{Row: 5, Col: 5})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Equal(t, before.Encoded, getStatus(t, srv).Encoded)
	})

	t.Run("out-of-bounds coordinates are rejected", func(t *testing.T) {
		srv := New()
		postJSON(t, srv, "/api/new", newGameRequest{Tier: "easy"})

		w := postJSON(t, srv, "/api/move", moveRequest{Row: 42, Col: -1})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("malformed bodies are rejected", func(t *testing.T) {
		srv := New()
		req := httptest.NewRequest(http.MethodPost, "/api/move", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWebsocketFeed(t *testing.T) {
	t.Run("clients receive move events", func(t *testing.T) {
		srv := New()
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()
		postJSON(t, srv, "/api/new", newGameRequest{Tier: "easy"})

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		postJSON(t, srv, "/api/move", moveRequest{Row: 5, Col: 5})

		// The human move, the thinking marker, then the engine move.
		seen := map[string]bool{}
		for i := 0; i < 3; i++ {
			var e event
			require.NoError(t, conn.ReadJSON(&e))
			require.NotNil(t, e.Status)
			seen[e.Type] = true
		}
		require.True(t, seen["move"])
		require.True(t, seen["thinking"])
	})

	t.Run("a closed client is dropped from the hub", func(t *testing.T) {
		srv := New()
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return srv.hub.clientCount() == 1 },
			2*time.Second, 10*time.Millisecond, "The dialed client must register")

		conn.Close()
		require.Eventually(t, func() bool { return srv.hub.clientCount() == 0 },
			2*time.Second, 10*time.Millisecond, "A closed client must be removed")
	})
}
