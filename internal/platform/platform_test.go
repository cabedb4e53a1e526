package platform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type lazyBackend struct {
	mu        sync.Mutex
	appearsAt int
	calls     int
	pos       Point
	err       error
}

func (b *lazyBackend) Position(string) (Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return Point{}, b.err
	}
	if b.calls < b.appearsAt {
		return Point{}, ErrWindowNotFound
	}
	return b.pos, nil
}

func (b *lazyBackend) Move(string, Point) error { return nil }
func (b *lazyBackend) Center(string) error { return nil }
func (b *lazyBackend) Close() error { return nil }

func TestWaitForWindow_RetriesUntilMapped(t *testing.T) {
	b := &lazyBackend{appearsAt: 3, pos: Point{X: 10, Y: -20}}

	got, err := WaitForWindow(context.Background(), b, "winkeeper", time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForWindow() error: %v", err)
	}
	if got != b.pos {
		t.Fatalf("WaitForWindow() = %v, want %v", got, b.pos)
	}
	if b.calls != 3 {
		t.Fatalf("Position called %d times, want 3", b.calls)
	}
}

func TestWaitForWindow_Timeout(t *testing.T) {
	b := &lazyBackend{appearsAt: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WaitForWindow(ctx, b, "winkeeper", time.Millisecond)
	if !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("WaitForWindow() error = %v, want ErrWindowNotFound", err)
	}
}

func TestWaitForWindow_OtherErrorsStopImmediately(t *testing.T) {
	b := &lazyBackend{err: ErrUnsupported}

	_, err := WaitForWindow(context.Background(), b, "winkeeper", time.Hour)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("WaitForWindow() error = %v, want ErrUnsupported", err)
	}
	if b.calls != 1 {
		t.Fatalf("Position called %d times, want 1", b.calls)
	}
}

func TestCenteredIn(t *testing.T) {
	tests := []struct {
		name                 string
		ax, ay, aw, ah, w, h int
		want                 Point
	}{
		{"primary", 0, 0, 1920, 1080, 400, 200, Point{760, 440}},
		{"second monitor left", -1280, 0, 1280, 1024, 400, 200, Point{-840, 412}},
		{"window larger than area", 0, 0, 800, 600, 1000, 700, Point{-100, -50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := centeredIn(tt.ax, tt.ay, tt.aw, tt.ah, tt.w, tt.h); got != tt.want {
				t.Fatalf("centeredIn = %v, want %v", got, tt.want)
			}
		})
	}
}
