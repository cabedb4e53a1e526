// Package session drives the main window's life from boot to exit:
// restore the saved placement, then capture and persist it on close.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"winkeeper/internal/logger"
	"winkeeper/internal/placement"
	"winkeeper/internal/platform"
)

// State is the application lifecycle state.
type State int

const (
	StateBooting          State = iota // placement loaded, window not yet placed
	StateRunning                       // window placed and interactive
	StateClosingRequested              // position captured, save in progress
	StateTerminated                    // window destroyed
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateRunning:
		return "running"
	case StateClosingRequested:
		return "closing"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotRunning is returned by RequestClose after a close was already
	// accepted or the window is gone.
	ErrNotRunning = errors.New("session: not running")

	// ErrClosePending is returned by RequestClose while booting. The request
	// is kept and reported by TakePendingClose once the window is placed.
	ErrClosePending = errors.New("session: close deferred until the window is placed")
)

// Store persists placements.
type Store interface {
	Load() (placement.Placement, error)
	Save(placement.Placement) error
}

// Destroyer destroys the window once its position has been saved.
type Destroyer interface {
	Destroy()
}

// Config holds the window lookup settings.
type Config struct {
	Title        string        // exact window title used for lookup
	WaitTimeout  time.Duration // how long to wait for the window to map
	PollInterval time.Duration
}

// Session owns the placement for the lifetime of the process.
type Session struct {
	mu        sync.Mutex
	state     State
	placement placement.Placement
	lastKnown platform.Point
	pending   bool

	store   Store
	backend platform.Backend
	config  Config
	log     *logger.Logger

	onState func(State)
}

// New creates a session in the Booting state.
func New(store Store, backend platform.Backend, cfg Config, log *logger.Logger) *Session {
	return &Session{
		state:     StateBooting,
		placement: placement.Default(),
		store:     store,
		backend:   backend,
		config:    cfg,
		log:       log.WithComponent("session"),
	}
}

// OnStateChange registers a callback invoked after every transition.
func (s *Session) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Placement returns the current placement: the loaded one until a close
// request replaces it with the captured position.
func (s *Session) Placement() placement.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placement
}

// Load reads the saved placement from the store.
func (s *Session) Load() (placement.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBooting {
		return placement.Placement{}, fmt.Errorf("session: load in state %s", s.state)
	}
	p, err := s.store.Load()
	if err != nil {
		return placement.Placement{}, err
	}
	s.placement = p
	return p, nil
}

// Start waits for the window to appear, applies the loaded placement and
// reports the resulting position. On success the session is Running.
func (s *Session) Start(ctx context.Context) (platform.Point, error) {
	p := s.Placement()
	if st := s.State(); st != StateBooting {
		return platform.Point{}, fmt.Errorf("session: start in state %s", st)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.config.WaitTimeout)
	defer cancel()
	if _, err := platform.WaitForWindow(waitCtx, s.backend, s.config.Title, s.config.PollInterval); err != nil {
		return platform.Point{}, fmt.Errorf("locate window: %w", err)
	}

	// The window manager may refuse to move us; that is not fatal.
	if err := s.apply(p); err != nil {
		s.log.WithError(err).Warnw("could not apply placement", "placement", p.String())
	}

	boot, err := s.backend.Position(s.config.Title)
	if err != nil {
		return platform.Point{}, fmt.Errorf("report boot position: %w", err)
	}
	s.log.Infow("on boot position", "x", boot.X, "y", boot.Y, "placement", p.String())

	s.mu.Lock()
	s.lastKnown = boot
	s.mu.Unlock()

	if !s.transition(StateBooting, StateRunning) {
		return boot, fmt.Errorf("session: start interrupted in state %s", s.State())
	}
	return boot, nil
}

func (s *Session) apply(p placement.Placement) error {
	switch pos := p.Position.(type) {
	case placement.Centered:
		return s.backend.Center(s.config.Title)
	case placement.At:
		return s.backend.Move(s.config.Title, platform.Point{
			X: int(math.Round(pos.X)),
			Y: int(math.Round(pos.Y)),
		})
	default:
		return fmt.Errorf("unknown position %T", pos)
	}
}

// Track refreshes the last known window position while Running. It is the
// fallback used when the window disappears before it can be queried.
func (s *Session) Track() (platform.Point, error) {
	if st := s.State(); st != StateRunning {
		return platform.Point{}, fmt.Errorf("session: track in state %s", st)
	}
	pos, err := s.backend.Position(s.config.Title)
	if err != nil {
		return platform.Point{}, err
	}

	s.mu.Lock()
	s.lastKnown = pos
	s.mu.Unlock()
	return pos, nil
}

// TakePendingClose reports whether a close was requested while booting and
// clears the request.
func (s *Session) TakePendingClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = false
	return p
}

// RequestClose handles a close request: capture the window position, save
// it, then destroy the window. Only the first request while Running is
// handled; the window is not destroyed if capture or save fail. Requests
// made while booting are deferred with ErrClosePending.
func (s *Session) RequestClose(d Destroyer) error {
	s.mu.Lock()
	if s.state == StateBooting {
		s.pending = true
		s.mu.Unlock()
		return ErrClosePending
	}
	s.mu.Unlock()

	if !s.transition(StateRunning, StateClosingRequested) {
		return ErrNotRunning
	}

	pos, err := s.backend.Position(s.config.Title)
	if err != nil {
		return fmt.Errorf("capture window position: %w", err)
	}
	if err := s.save(pos); err != nil {
		return err
	}

	d.Destroy()
	return nil
}

// Destroyed records that the window is gone. A window destroyed while
// Running was closed by the window system (its own close button, Alt+F4,
// the taskbar); its position is saved the same way as for RequestClose,
// from the last known position if the window can no longer be queried.
// saved reports whether a placement was written.
func (s *Session) Destroyed() (saved bool, err error) {
	if s.transition(StateRunning, StateClosingRequested) {
		pos, perr := s.backend.Position(s.config.Title)
		if perr != nil {
			s.mu.Lock()
			pos = s.lastKnown
			s.mu.Unlock()
			s.log.WithError(perr).Debugw("window already gone, using last known position",
				"x", pos.X, "y", pos.Y)
		}
		err = s.save(pos)
		saved = err == nil
	}

	s.mu.Lock()
	prev := s.state
	if prev == StateTerminated {
		s.mu.Unlock()
		return saved, err
	}
	s.state = StateTerminated
	fn := s.onState
	s.mu.Unlock()

	s.log.Debugw("state change", "from", prev.String(), "to", StateTerminated.String())
	if fn != nil {
		fn(StateTerminated)
	}
	return saved, err
}

func (s *Session) save(pos platform.Point) error {
	s.log.Infow("on exit position", "x", pos.X, "y", pos.Y)

	p := placement.AtPoint(float64(pos.X), float64(pos.Y))
	s.mu.Lock()
	s.placement = p
	s.mu.Unlock()

	if err := s.store.Save(p); err != nil {
		return fmt.Errorf("save placement: %w", err)
	}
	return nil
}

// transition moves from one state to another if the session is still in
// from. It reports whether the move happened.
func (s *Session) transition(from, to State) bool {
	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return false
	}
	s.state = to
	fn := s.onState
	s.mu.Unlock()

	s.log.Debugw("state change", "from", from.String(), "to", to.String())
	if fn != nil {
		fn(to)
	}
	return true
}
