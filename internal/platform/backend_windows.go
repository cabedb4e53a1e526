//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowPlacement       = user32.NewProc("GetWindowPlacement")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procMonitorFromWindow        = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfoW          = user32.NewProc("GetMonitorInfoW")
)

const (
	swpNoSize     = 0x0001
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	monitorDefaultToNearest = 0x00000002

	// minimizedPosition is where Windows parks minimized windows.
	minimizedPosition = -32000
)

type windowPlacement struct {
	Length           uint32
	Flags            uint32
	ShowCmd          uint32
	PtMinPosition    [2]int32
	PtMaxPosition    [2]int32
	RcNormalPosition windows.Rect
}

type monitorInfo struct {
	CbSize    uint32
	RcMonitor windows.Rect
	RcWork    windows.Rect
	DwFlags   uint32
}

type win32Backend struct {
	pid uint32
}

// New returns the Win32 backend.
func New() (Backend, error) {
	return &win32Backend{pid: windows.GetCurrentProcessId()}, nil
}

func (b *win32Backend) Position(title string) (Point, error) {
	hwnd, err := b.find(title)
	if err != nil {
		return Point{}, err
	}
	r, err := windowRect(hwnd)
	if err != nil {
		return Point{}, err
	}
	return Point{X: int(r.Left), Y: int(r.Top)}, nil
}

func (b *win32Backend) Move(title string, p Point) error {
	hwnd, err := b.find(title)
	if err != nil {
		return err
	}
	return setWindowPos(hwnd, p)
}

func (b *win32Backend) Center(title string) error {
	hwnd, err := b.find(title)
	if err != nil {
		return err
	}
	r, err := windowRect(hwnd)
	if err != nil {
		return err
	}

	mon, _, _ := procMonitorFromWindow.Call(hwnd, monitorDefaultToNearest)
	info := monitorInfo{CbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
	if ok, _, callErr := procGetMonitorInfoW.Call(mon, uintptr(unsafe.Pointer(&info))); ok == 0 {
		return fmt.Errorf("GetMonitorInfoW: %w", callErr)
	}

	work := info.RcWork
	p := centeredIn(
		int(work.Left), int(work.Top),
		int(work.Right-work.Left), int(work.Bottom-work.Top),
		int(r.Right-r.Left), int(r.Bottom-r.Top),
	)
	return setWindowPos(hwnd, p)
}

func (b *win32Backend) Close() error {
	return nil
}

func (b *win32Backend) find(title string) (uintptr, error) {
	name, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(name)))
	if hwnd == 0 {
		return 0, ErrWindowNotFound
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid != b.pid {
		return 0, ErrWindowNotFound
	}
	return hwnd, nil
}

// windowRect returns the window's screen rectangle. Minimized windows are
// reported at -32000, so their restored rectangle is used instead.
func windowRect(hwnd uintptr) (windows.Rect, error) {
	var r windows.Rect
	if ok, _, callErr := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ok == 0 {
		return r, fmt.Errorf("GetWindowRect: %w", callErr)
	}
	if r.Left != minimizedPosition || r.Top != minimizedPosition {
		return r, nil
	}

	wp := windowPlacement{Length: uint32(unsafe.Sizeof(windowPlacement{}))}
	if ok, _, callErr := procGetWindowPlacement.Call(hwnd, uintptr(unsafe.Pointer(&wp))); ok == 0 {
		return r, fmt.Errorf("GetWindowPlacement: %w", callErr)
	}
	return wp.RcNormalPosition, nil
}

func setWindowPos(hwnd uintptr, p Point) error {
	ok, _, callErr := procSetWindowPos.Call(
		hwnd, 0,
		uintptr(int32(p.X)), uintptr(int32(p.Y)),
		0, 0,
		swpNoSize|swpNoZOrder|swpNoActivate,
	)
	if ok == 0 {
		return fmt.Errorf("SetWindowPos: %w", callErr)
	}
	return nil
}
