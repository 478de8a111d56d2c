// Package daemon hosts one game over HTTP for a browser front end.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gridplan/gridplan/internal/clock"
	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Tick         time.Duration
	RateLimit    float64 // requests per second per client IP, <= 0 disables
	RateBurst    int
	EventsBuffer int
	Clock        clock.Clock
}

// State is the game state served at /v1/state and carried by events.
type State struct {
	Player      string                   `json:"player,omitempty"`
	Screen      session.Screen           `json:"screen"`
	Level       int                      `json:"level,omitempty"`
	ElapsedSecs int64                    `json:"elapsed_secs"`
	Clock       string                   `json:"clock"`
	Policy      string                   `json:"policy"`
	Unlocked    []int                    `json:"unlocked"`
	Snapshot    *model.Snapshot          `json:"snapshot,omitempty"`
	Investments []model.InvestmentOption `json:"investments,omitempty"`
}

// Event is emitted after every state change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	State     *State    `json:"state,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Event types.
const (
	EventState    = "state"
	EventSession  = "session"
	EventLevel    = "level"
	EventUnits    = "units"
	EventInvest   = "invest"
	EventTimer    = "timer"
	EventTick     = "tick"
	EventComplete = "complete"
	EventError    = "error"
)

// Service provides the game runtime and HTTP API.
type Service struct {
	cfg     Config
	limiter *ipLimiter

	mu          sync.RWMutex
	game        *game.Game
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service hosting g.
func New(cfg Config, g *game.Game) *Service {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	return &Service{
		cfg:     cfg,
		limiter: newIPLimiter(cfg.RateLimit, cfg.RateBurst),
		game:    g,
		subs:    make(map[int]chan Event),
	}
}

// Run serves HTTP and drives the level timer until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("gridplan serve: listening on %s", s.cfg.Addr)

	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go clock.Ticker{Interval: s.cfg.Tick}.Run(tickCtx, func(time.Time) { s.tick() })

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("gridplan serve: %w", err)
	}
}

// Handler returns the rate-limited HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/session", s.handleSession)
	mux.HandleFunc("/v1/level", s.handleLevel)
	mux.HandleFunc("/v1/units", s.handleUnits)
	mux.HandleFunc("/v1/investments", s.handleInvestments)
	mux.HandleFunc("/v1/timer", s.handleTimer)
	mux.HandleFunc("/v1/submit", s.handleSubmit)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/ws", s.handleWS)
	return s.limiter.middleware(mux)
}

func (s *Service) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game.Tick() {
		s.publishLocked(EventTick)
	}
}

// mutate runs fn, then recomputes and publishes the new state, all under
// one lock so subscribers never observe a stale snapshot.
func (s *Service) mutate(eventType string, fn func(g *game.Game) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.game); err != nil {
		return State{}, err
	}
	ev := s.publishLocked(eventType)
	return *ev.State, nil
}

func (s *Service) currentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Service) stateLocked() State {
	g := s.game
	sess := g.Session()
	st := State{
		Player:      sess.Player,
		Screen:      sess.Screen,
		Level:       sess.Level,
		ElapsedSecs: sess.Timer.Elapsed,
		Clock:       sess.Timer.String(),
		Policy:      g.Policy().Name,
		Unlocked:    g.Unlocked(),
	}
	if snap, ok := g.Snapshot(); ok {
		st.Snapshot = &snap
		st.Investments = g.Ledger().Investments()
	}
	return st
}

func (s *Service) publishLocked(eventType string) Event {
	st := s.stateLocked()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      eventType,
		Timestamp: s.cfg.Clock.Now(),
		State:     &st,
	}
	s.appendEventLocked(ev)
	return ev
}

func (s *Service) appendEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
