package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"
)

const maxBodyBytes = 1 << 16

type sessionRequest struct {
	Player string `json:"player"`
}

type levelRequest struct {
	Level int `json:"level"`
}

type unitsRequest struct {
	Type  model.EnergyType `json:"type"`
	Delta int              `json:"delta"`
}

type investmentRequest struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

type timerRequest struct {
	Action string `json:"action"`
}

type submitResponse struct {
	Result model.Result `json:"result"`
	State  State        `json:"state"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodePost(w, r, &req) {
		return
	}
	s.respond(w, EventSession, func(g *game.Game) error { return g.Begin(req.Player) })
}

func (s *Service) handleLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if !decodePost(w, r, &req) {
		return
	}
	s.respond(w, EventLevel, func(g *game.Game) error { return g.SelectLevel(req.Level) })
}

func (s *Service) handleUnits(w http.ResponseWriter, r *http.Request) {
	var req unitsRequest
	if !decodePost(w, r, &req) {
		return
	}
	cmd := ledger.Command{Op: ledger.OpUnits, Type: req.Type, Delta: req.Delta}
	s.respond(w, EventUnits, func(g *game.Game) error {
		_, err := g.Apply(cmd)
		return err
	})
}

func (s *Service) handleInvestments(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if !decodePost(w, r, &req) {
		return
	}
	cmd := ledger.Command{Op: ledger.OpInvest, ID: req.ID, Enabled: req.Enabled}
	s.respond(w, EventInvest, func(g *game.Game) error {
		_, err := g.Apply(cmd)
		return err
	})
}

func (s *Service) handleTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if !decodePost(w, r, &req) {
		return
	}
	s.respond(w, EventTimer, func(g *game.Game) error { return g.Control(req.Action) })
}

func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var res model.Result
	st, err := s.mutate(EventComplete, func(g *game.Game) error {
		var err error
		res, err = g.Submit()
		if err != nil && res.Level != 0 {
			// Completed but not recorded.
			log.Printf("gridplan serve: %v", err)
			return nil
		}
		return err
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Result: res, State: st})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := s.currentState()
	writeSSE(w, Event{Type: EventState, Timestamp: s.cfg.Clock.Now(), State: &current})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Service) respond(w http.ResponseWriter, eventType string, fn func(g *game.Game) error) {
	st, err := s.mutate(eventType, fn)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownLevel):
		return http.StatusNotFound
	case errors.Is(err, session.ErrLevelLocked),
		errors.Is(err, game.ErrNoLevel),
		errors.Is(err, game.ErrPaused),
		errors.Is(err, game.ErrInLevel),
		errors.Is(err, game.ErrGoalsNotMet):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyName),
		errors.Is(err, ledger.ErrUnknownCommand),
		errors.Is(err, game.ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !allowMethod(w, r, http.MethodPost) {
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
