//go:build darwin

package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// macBackend drives System Events through osascript. It needs the
// Accessibility permission for the terminal or app bundle.
type macBackend struct {
	pid int
}

// New returns the macOS backend.
func New() (Backend, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, fmt.Errorf("%w: osascript not found", ErrUnsupported)
	}
	return &macBackend{pid: os.Getpid()}, nil
}

func (b *macBackend) windowRef(title string) string {
	return fmt.Sprintf("window %s of (first process whose unix id is %d)", strconv.Quote(title), b.pid)
}

func (b *macBackend) Position(title string) (Point, error) {
	out, err := b.run(fmt.Sprintf(`tell application "System Events" to get position of %s`, b.windowRef(title)))
	if err != nil {
		return Point{}, err
	}
	vals, err := parseInts(out, 2)
	if err != nil {
		return Point{}, err
	}
	return Point{X: vals[0], Y: vals[1]}, nil
}

func (b *macBackend) Move(title string, p Point) error {
	_, err := b.run(fmt.Sprintf(`tell application "System Events" to set position of %s to {%d, %d}`, b.windowRef(title), p.X, p.Y))
	return err
}

func (b *macBackend) Center(title string) error {
	out, err := b.run(fmt.Sprintf(`tell application "System Events" to get size of %s`, b.windowRef(title)))
	if err != nil {
		return err
	}
	size, err := parseInts(out, 2)
	if err != nil {
		return err
	}

	out, err = b.run(`tell application "Finder" to get bounds of window of desktop`)
	if err != nil {
		return err
	}
	desk, err := parseInts(out, 4)
	if err != nil {
		return err
	}

	p := centeredIn(desk[0], desk[1], desk[2]-desk[0], desk[3]-desk[1], size[0], size[1])
	return b.Move(title, p)
}

func (b *macBackend) Close() error {
	return nil
}

func (b *macBackend) run(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		// -1719 (invalid index) and -1728 (no such object): the window is not up yet.
		if strings.Contains(text, "-1719") || strings.Contains(text, "-1728") {
			return "", ErrWindowNotFound
		}
		return "", fmt.Errorf("osascript: %w: %s", err, text)
	}
	return text, nil
}

// parseInts parses osascript list output such as "120, 340".
func parseInts(s string, n int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("unexpected osascript output %q", s)
	}
	vals := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Join(fmt.Errorf("unexpected osascript output %q", s), err)
		}
		vals[i] = v
	}
	return vals, nil
}
