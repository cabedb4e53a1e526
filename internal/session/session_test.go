package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"winkeeper/internal/config"
	"winkeeper/internal/configdir"
	"winkeeper/internal/logger"
	"winkeeper/internal/placement"
	"winkeeper/internal/platform"
)

const testTitle = "winkeeper-test"

// fakeBackend simulates a window manager holding a single window.
type fakeBackend struct {
	mu       sync.Mutex
	mapped   bool
	pos      platform.Point
	center   platform.Point
	moves    []platform.Point
	centered int
	posErr   error
	posErrAt int // fail Position from this call on (1-based); 0 = always
	posCalls int
	moveErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{mapped: true, pos: platform.Point{X: 3, Y: 4}, center: platform.Point{X: 760, Y: 440}}
}

func (b *fakeBackend) Position(title string) (platform.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posCalls++
	if title != testTitle || !b.mapped {
		return platform.Point{}, platform.ErrWindowNotFound
	}
	if b.posErr != nil && b.posCalls >= b.posErrAt {
		return platform.Point{}, b.posErr
	}
	return b.pos, nil
}

func (b *fakeBackend) Move(_ string, p platform.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.moveErr != nil {
		return b.moveErr
	}
	b.moves = append(b.moves, p)
	b.pos = p
	return nil
}

func (b *fakeBackend) Center(string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.moveErr != nil {
		return b.moveErr
	}
	b.centered++
	b.pos = b.center
	return nil
}

func (b *fakeBackend) Close() error { return nil }

// userMoves simulates the user dragging the window.
func (b *fakeBackend) userMoves(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = platform.Point{X: x, Y: y}
}

type fakeDestroyer struct {
	destroyed int
	onDestroy func()
}

func (d *fakeDestroyer) Destroy() {
	d.destroyed++
	if d.onDestroy != nil {
		d.onDestroy()
	}
}

type failingStore struct {
	loaded placement.Placement
	err    error
}

func (s failingStore) Load() (placement.Placement, error) { return s.loaded, nil }
func (s failingStore) Save(placement.Placement) error { return s.err }

func testConfig() Config {
	return Config{Title: testTitle, WaitTimeout: 200 * time.Millisecond, PollInterval: time.Millisecond}
}

func newStore(t *testing.T, dir string) *config.Store {
	t.Helper()
	return config.NewStore(configdir.Static(dir), logger.Nop())
}

func boot(t *testing.T, s *Session) placement.Placement {
	t.Helper()
	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if s.State() != StateRunning {
		t.Fatalf("state after Start = %s, want running", s.State())
	}
	return p
}

func TestSession_FreshEnvironmentRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg", "winkeeper")
	store := newStore(t, dir)

	// First run: nothing saved yet.
	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	if p := boot(t, s); !p.Equal(placement.Default()) {
		t.Fatalf("first Load() = %v, want Centered", p)
	}
	if b.centered != 1 {
		t.Fatalf("Center called %d times, want 1", b.centered)
	}

	b.userMoves(120, 340)

	d := &fakeDestroyer{}
	d.onDestroy = func() {
		// The record must already be on disk when the window goes away.
		got, err := store.Load()
		if err != nil || !got.Equal(placement.AtPoint(120, 340)) {
			t.Errorf("at destroy time Load() = %v, %v; want At(120, 340)", got, err)
		}
	}
	if err := s.RequestClose(d); err != nil {
		t.Fatalf("RequestClose() error: %v", err)
	}
	if d.destroyed != 1 {
		t.Fatalf("Destroy called %d times, want 1", d.destroyed)
	}
	if s.State() != StateClosingRequested {
		t.Fatalf("state = %s, want closing", s.State())
	}
	if saved, err := s.Destroyed(); saved || err != nil {
		t.Fatalf("Destroyed() after close = %v, %v; want no second save", saved, err)
	}
	if s.State() != StateTerminated {
		t.Fatalf("state = %s, want terminated", s.State())
	}
	if !s.Placement().Equal(placement.AtPoint(120, 340)) {
		t.Fatalf("Placement() = %v, want At(120, 340)", s.Placement())
	}

	// Relaunch.
	b2 := newFakeBackend()
	s2 := New(store, b2, testConfig(), logger.Nop())
	if p := boot(t, s2); !p.Equal(placement.AtPoint(120, 340)) {
		t.Fatalf("second Load() = %v, want At(120, 340)", p)
	}
	if len(b2.moves) != 1 || b2.moves[0] != (platform.Point{X: 120, Y: 340}) {
		t.Fatalf("moves = %v, want [(120, 340)]", b2.moves)
	}
	if b2.centered != 0 {
		t.Fatalf("Center called on relaunch")
	}
}

func TestSession_CenteredRecord(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, dir)
	if err := store.Save(placement.Default()); err != nil {
		t.Fatalf("seed Save() error: %v", err)
	}

	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	if p := boot(t, s); !p.Equal(placement.Default()) {
		t.Fatalf("Load() = %v, want Centered", p)
	}
	if b.centered != 1 || len(b.moves) != 0 {
		t.Fatalf("centered=%d moves=%v, want a single Center", b.centered, b.moves)
	}
}

func TestSession_FractionalCoordinatesAreRounded(t *testing.T) {
	store := failingStore{loaded: placement.AtPoint(10.6, -3.4)}
	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	boot(t, s)

	if len(b.moves) != 1 || b.moves[0] != (platform.Point{X: 11, Y: -3}) {
		t.Fatalf("moves = %v, want [(11, -3)]", b.moves)
	}
}

func TestSession_LoadErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, dir)
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("position: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(store, newFakeBackend(), testConfig(), logger.Nop())
	if _, err := s.Load(); !errors.Is(err, config.ErrMalformed) {
		t.Fatalf("Load() error = %v, want ErrMalformed", err)
	}
}

func TestSession_CloseIsDrainedOnce(t *testing.T) {
	s := New(newStore(t, t.TempDir()), newFakeBackend(), testConfig(), logger.Nop())
	boot(t, s)

	d := &fakeDestroyer{}
	if err := s.RequestClose(d); err != nil {
		t.Fatalf("first RequestClose() error: %v", err)
	}
	if err := s.RequestClose(d); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("second RequestClose() error = %v, want ErrNotRunning", err)
	}
	if d.destroyed != 1 {
		t.Fatalf("Destroy called %d times, want 1", d.destroyed)
	}
}

func TestSession_ConcurrentCloseRequests(t *testing.T) {
	s := New(newStore(t, t.TempDir()), newFakeBackend(), testConfig(), logger.Nop())
	boot(t, s)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	d := &fakeDestroyer{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.RequestClose(d); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 || d.destroyed != 1 {
		t.Fatalf("accepted=%d destroyed=%d, want 1 and 1", accepted, d.destroyed)
	}
}

func TestSession_CloseWhileBootingIsDeferred(t *testing.T) {
	s := New(newStore(t, t.TempDir()), newFakeBackend(), testConfig(), logger.Nop())
	d := &fakeDestroyer{}
	if err := s.RequestClose(d); !errors.Is(err, ErrClosePending) {
		t.Fatalf("RequestClose() while booting = %v, want ErrClosePending", err)
	}
	if d.destroyed != 0 || s.State() != StateBooting {
		t.Fatalf("destroyed=%d state=%s", d.destroyed, s.State())
	}

	boot(t, s)
	if !s.TakePendingClose() {
		t.Fatal("TakePendingClose() = false, want the deferred request")
	}
	if s.TakePendingClose() {
		t.Fatal("TakePendingClose() should clear the request")
	}
	if err := s.RequestClose(d); err != nil || d.destroyed != 1 {
		t.Fatalf("RequestClose() after boot = %v, destroyed=%d", err, d.destroyed)
	}
}

func TestSession_CaptureFailureDoesNotDestroy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	store := newStore(t, dir)
	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	boot(t, s)

	b.mu.Lock()
	b.posErr = errors.New("display gone")
	b.mu.Unlock()

	d := &fakeDestroyer{}
	if err := s.RequestClose(d); err == nil {
		t.Fatal("RequestClose() succeeded without a position")
	}
	if d.destroyed != 0 {
		t.Fatal("window destroyed after failed capture")
	}
	if p, err := store.Load(); err != nil || !p.Equal(placement.Default()) {
		t.Fatalf("store after failed capture = %v, %v; want nothing saved", p, err)
	}
}

func TestSession_SaveFailureDoesNotDestroy(t *testing.T) {
	s := New(failingStore{loaded: placement.Default(), err: errors.New("disk full")}, newFakeBackend(), testConfig(), logger.Nop())
	boot(t, s)

	d := &fakeDestroyer{}
	err := s.RequestClose(d)
	if err == nil || d.destroyed != 0 {
		t.Fatalf("RequestClose() = %v, destroyed=%d; want error and no destroy", err, d.destroyed)
	}
}

func TestSession_StartFailsWhenWindowNeverAppears(t *testing.T) {
	b := newFakeBackend()
	b.mapped = false
	s := New(newStore(t, t.TempDir()), b, testConfig(), logger.Nop())
	if _, err := s.Load(); err != nil {
		t.Fatal(err)
	}

	_, err := s.Start(context.Background())
	if !errors.Is(err, platform.ErrWindowNotFound) {
		t.Fatalf("Start() error = %v, want ErrWindowNotFound", err)
	}
	if s.State() != StateBooting {
		t.Fatalf("state = %s, want booting", s.State())
	}
}

func TestSession_BootReportFailureIsError(t *testing.T) {
	b := newFakeBackend()
	// The wait succeeds on the first call, the report after placing fails.
	b.posErr = errors.New("query failed")
	b.posErrAt = 2
	s := New(newStore(t, t.TempDir()), b, testConfig(), logger.Nop())
	if _, err := s.Load(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded without a boot position")
	}
}

func TestSession_MoveFailureIsNotFatal(t *testing.T) {
	b := newFakeBackend()
	b.moveErr = errors.New("window manager refused")
	s := New(failingStore{loaded: placement.AtPoint(5, 5)}, b, testConfig(), logger.Nop())
	boot(t, s)
}

func TestSession_DestroyWithoutCloseRequestSaves(t *testing.T) {
	store := newStore(t, t.TempDir())
	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	boot(t, s)
	b.userMoves(120, 340)

	var states []State
	s.OnStateChange(func(st State) { states = append(states, st) })
	saved, err := s.Destroyed()
	if !saved || err != nil {
		t.Fatalf("Destroyed() = %v, %v; want saved", saved, err)
	}
	if saved, _ := s.Destroyed(); saved {
		t.Fatal("second Destroyed() saved again")
	}

	if s.State() != StateTerminated {
		t.Fatalf("state = %s, want terminated", s.State())
	}
	want := []State{StateClosingRequested, StateTerminated}
	if len(states) != 2 || states[0] != want[0] || states[1] != want[1] {
		t.Fatalf("observed states = %v, want %v", states, want)
	}
	if err := s.RequestClose(&fakeDestroyer{}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("RequestClose() after destroy = %v, want ErrNotRunning", err)
	}

	// Relaunch.
	s2 := New(store, newFakeBackend(), testConfig(), logger.Nop())
	if p, err := s2.Load(); err != nil || !p.Equal(placement.AtPoint(120, 340)) {
		t.Fatalf("relaunch Load() = %v, %v; want At(120, 340)", p, err)
	}
}

func TestSession_DestroyedUsesLastKnownPosition(t *testing.T) {
	store := newStore(t, t.TempDir())
	b := newFakeBackend()
	s := New(store, b, testConfig(), logger.Nop())
	boot(t, s)

	b.userMoves(-50, 80)
	if _, err := s.Track(); err != nil {
		t.Fatalf("Track() error: %v", err)
	}
	// The window system already dropped the window.
	b.mu.Lock()
	b.mapped = false
	b.mu.Unlock()

	if saved, err := s.Destroyed(); !saved || err != nil {
		t.Fatalf("Destroyed() = %v, %v; want saved", saved, err)
	}
	if p, err := store.Load(); err != nil || !p.Equal(placement.AtPoint(-50, 80)) {
		t.Fatalf("Load() = %v, %v; want At(-50, 80)", p, err)
	}
}

func TestSession_DestroyedSaveFailure(t *testing.T) {
	s := New(failingStore{loaded: placement.Default(), err: errors.New("disk full")}, newFakeBackend(), testConfig(), logger.Nop())
	boot(t, s)

	if saved, err := s.Destroyed(); saved || err == nil {
		t.Fatalf("Destroyed() = %v, %v; want save error", saved, err)
	}
	if s.State() != StateTerminated {
		t.Fatalf("state = %s, want terminated", s.State())
	}
}

func TestSession_TrackOnlyWhileRunning(t *testing.T) {
	s := New(newStore(t, t.TempDir()), newFakeBackend(), testConfig(), logger.Nop())
	if _, err := s.Track(); err == nil {
		t.Fatal("Track() while booting should fail")
	}
}

func TestSession_StateObserverSequence(t *testing.T) {
	s := New(newStore(t, t.TempDir()), newFakeBackend(), testConfig(), logger.Nop())
	var states []State
	s.OnStateChange(func(st State) { states = append(states, st) })

	boot(t, s)
	if err := s.RequestClose(&fakeDestroyer{}); err != nil {
		t.Fatal(err)
	}
	s.Destroyed()

	want := []State{StateRunning, StateClosingRequested, StateTerminated}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestState_String(t *testing.T) {
	if StateClosingRequested.String() != "closing" || State(42).String() != "State(42)" {
		t.Fatalf("unexpected State strings: %s %s", StateClosingRequested, State(42))
	}
}
