// Package server bridges one browser game session to the engine: a
// small REST surface for moves and status, plus a websocket feed that
// pushes board updates and engine activity to the client.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"hexmind/engine"
	"hexmind/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server owns a single game session: the human plays red, the engine
// answers as blue. One session per process keeps the state a mutex and
// a board, nothing more.
type Server struct {
	mu       sync.Mutex
	board    *game.Board
	tier     engine.Tier
	eng      *engine.Engine
	lastMove *game.Move
	history  []string
	winner   game.CellState
	thinking bool

	hub    *hub
	router chi.Router
}

func New() *Server {
	s := &Server{
		board: engine.NewSession(),
		tier:  engine.TierMedium,
		eng:   engine.New(engine.TierMedium),
		hub:   newHub(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/new", s.handleNew)
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/move", s.handleMove)
	r.Get("/ws", s.handleWS)
	return r
}

type newGameRequest struct {
	Tier string `json:"tier"`
}

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type statusResponse struct {
	Board    [][]int  `json:"board"`
	Encoded  string   `json:"encoded"`
	Turn     int      `json:"turn"`
	ToMove   string   `json:"to_move"`
	Winner   string   `json:"winner"`
	Tier     string   `json:"tier"`
	Thinking bool     `json:"thinking"`
	LastMove *cellDTO `json:"last_move,omitempty"`
}

type moveResponse struct {
	statusResponse
	EngineMove *cellDTO `json:"engine_move,omitempty"`
	Rationale  []string `json:"rationale,omitempty"`
	ElapsedMs  int64    `json:"elapsed_ms"`
}

type cellDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.board = engine.NewSession()
	s.tier = tier
	s.eng = engine.New(tier)
	s.lastMove = nil
	s.history = nil
	s.winner = game.Empty
	s.thinking = false
	status := s.statusLocked()
	s.mu.Unlock()

	s.hub.publish(event{Type: "reset", Status: &status})
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.statusLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, status)
}

// handleMove applies the human move and answers with the engine's
// reply in the same request. The websocket feed sees three events:
// the human's placement, the engine thinking, the engine's placement.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	mv := game.Move{Row: req.Row, Col: req.Col}

	s.mu.Lock()
	if s.winner != game.Empty {
		s.mu.Unlock()
		httpError(w, http.StatusConflict, "game already decided")
		return
	}
	if s.board.ToMove() != game.Red {
		s.mu.Unlock()
		httpError(w, http.StatusConflict, "not the player's turn")
		return
	}
	if err := engine.IsLegalMove(s.board, mv, false); err != nil {
		s.mu.Unlock()
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	next, err := engine.ApplyMove(s.board, mv, game.Red)
	if err != nil {
		s.mu.Unlock()
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.board = next
	s.lastMove = &mv
	s.history = append(s.history, game.Encode(next))
	s.winner = engine.CheckWinner(next)
	status := s.statusLocked()
	s.mu.Unlock()

	s.hub.publish(event{Type: "move", Status: &status})
	if status.Winner != game.Empty.String() {
		writeJSON(w, http.StatusOK, moveResponse{statusResponse: status})
		return
	}

	resp := s.engineTurn(r, mv)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) engineTurn(r *http.Request, humanMove game.Move) moveResponse {
	s.mu.Lock()
	s.thinking = true
	thinkStatus := s.statusLocked()
	req := engine.MoveRequest{
		Board:     game.Encode(s.board),
		LastMove:  &humanMove,
		Tier:      s.tier,
		TurnCount: s.board.Turn(),
		History:   append([]string(nil), s.history...),
	}
	eng := s.eng
	s.mu.Unlock()

	s.hub.publish(event{Type: "thinking", Status: &thinkStatus})
	start := time.Now()
	result := eng.ComputeMove(r.Context(), req)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.thinking = false
	if result.Move != nil {
		next, err := engine.ApplyMove(s.board, *result.Move, game.Blue)
		if err != nil {
			log.Warn().Err(err).Msg("engine produced an inapplicable move")
		} else {
			s.board = next
			s.lastMove = result.Move
			s.history = append(s.history, game.Encode(next))
			s.winner = engine.CheckWinner(next)
		}
	}
	status := s.statusLocked()

	resp := moveResponse{
		statusResponse: status,
		Rationale:      result.Rationale,
		ElapsedMs:      elapsed.Milliseconds(),
	}
	if result.Move != nil {
		resp.EngineMove = &cellDTO{Row: result.Move.Row, Col: result.Move.Col}
	}
	s.hub.publish(event{Type: "move", Status: &status})
	return resp
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.hub.add(conn)
}

// statusLocked snapshots session state; the caller holds s.mu.
func (s *Server) statusLocked() statusResponse {
	status := statusResponse{
		Board:    s.board.Grid(),
		Encoded:  game.Encode(s.board),
		Turn:     s.board.Turn(),
		ToMove:   s.board.ToMove().String(),
		Winner:   s.winner.String(),
		Tier:     s.tier.String(),
		Thinking: s.thinking,
	}
	if s.lastMove != nil {
		status.LastMove = &cellDTO{Row: s.lastMove.Row, Col: s.lastMove.Col}
	}
	return status
}

func parseTier(s string) (engine.Tier, error) {
	switch s {
	case "easy":
		return engine.TierEasy, nil
	case "", "medium":
		return engine.TierMedium, nil
	case "hard":
		return engine.TierHard, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
