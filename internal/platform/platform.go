// Package platform reads and changes the on-screen position of the
// application's own top-level window. Gio exposes no window position, so
// the window is looked up through the native window system by its title.
package platform

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrWindowNotFound is returned while the window is not (yet) mapped.
	ErrWindowNotFound = errors.New("platform: window not found")
	// ErrUnsupported is returned when the session cannot report or set
	// global window positions.
	ErrUnsupported = errors.New("platform: window positioning not supported")
)

// Point is a position in screen coordinates (top-left of the window).
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Backend locates a window of this process by exact title.
type Backend interface {
	Position(title string) (Point, error)
	Move(title string, p Point) error
	Center(title string) error
	Close() error
}

// WaitForWindow polls until the window is known to the window system and
// returns its position. The last lookup error is returned when ctx ends.
func WaitForWindow(ctx context.Context, b Backend, title string, interval time.Duration) (Point, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p, err := b.Position(title)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrWindowNotFound) {
			return Point{}, err
		}

		select {
		case <-ctx.Done():
			return Point{}, fmt.Errorf("wait for window %q: %w (%v)", title, err, ctx.Err())
		case <-ticker.C:
		}
	}
}

// centeredIn returns the top-left corner that centers a w×h window in the
// area starting at (ax, ay) of size aw×ah.
func centeredIn(ax, ay, aw, ah, w, h int) Point {
	return Point{
		X: ax + (aw-w)/2,
		Y: ay + (ah-h)/2,
	}
}
