//go:build !linux && !windows && !darwin

package platform

import (
	"fmt"
	"runtime"
)

// New reports that window positioning is not implemented for this OS.
func New() (Backend, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
}
