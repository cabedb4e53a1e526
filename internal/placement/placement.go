// Package placement describes where the main window goes on screen.
package placement

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoPosition is returned when a Placement carries no position at all.
	ErrNoPosition = errors.New("placement: no position")
	// ErrNonFinite is returned for At coordinates that are NaN or infinite.
	ErrNonFinite = errors.New("placement: coordinates must be finite")
)

// Position is either Centered or At. No other implementations exist.
type Position interface {
	isPosition()
	String() string
}

// Centered asks for the window to be centered on its monitor.
type Centered struct{}

func (Centered) isPosition() {}

func (Centered) String() string { return "Centered" }

// At places the window's top-left corner at screen coordinates X, Y.
type At struct {
	X float64
	Y float64
}

func (At) isPosition() {}

func (a At) String() string {
	return fmt.Sprintf("At(%g, %g)", a.X, a.Y)
}

// Placement is the persisted record: the last known window position.
type Placement struct {
	Position Position
}

// Default returns the placement used when nothing has been saved yet.
func Default() Placement {
	return Placement{Position: Centered{}}
}

// AtPoint returns a placement at the given coordinates.
func AtPoint(x, y float64) Placement {
	return Placement{Position: At{X: x, Y: y}}
}

// Validate reports whether p can be persisted.
func (p Placement) Validate() error {
	switch pos := p.Position.(type) {
	case Centered:
		return nil
	case At:
		if !finite(pos.X) || !finite(pos.Y) {
			return fmt.Errorf("%w: %v", ErrNonFinite, pos)
		}
		return nil
	case nil:
		return ErrNoPosition
	default:
		return fmt.Errorf("placement: unknown position %T", pos)
	}
}

// Equal reports whether two placements hold the same variant and coordinates.
func (p Placement) Equal(o Placement) bool {
	switch a := p.Position.(type) {
	case Centered:
		_, ok := o.Position.(Centered)
		return ok
	case At:
		b, ok := o.Position.(At)
		return ok && a == b
	default:
		return p.Position == nil && o.Position == nil
	}
}

func (p Placement) String() string {
	if p.Position == nil {
		return "<none>"
	}
	return p.Position.String()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
