//go:build linux

package platform

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// x11Backend talks to the X server directly. Gio uses X11 whenever no
// Wayland compositor is advertised.
type x11Backend struct {
	xu  *xgbutil.XUtil
	pid int
}

type rect struct {
	X, Y, Width, Height int
}

// New connects to the native window system.
func New() (Backend, error) {
	// Wayland clients cannot read or set their global position.
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return nil, fmt.Errorf("%w: Wayland session", ErrUnsupported)
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X11: %w", err)
	}
	return &x11Backend{xu: xu, pid: os.Getpid()}, nil
}

// Position, Move and Center all work on the outer frame, so a position
// read back after Move is the one that was set.
func (b *x11Backend) Position(title string) (Point, error) {
	win, err := b.find(title)
	if err != nil {
		return Point{}, err
	}
	r, _, err := b.frame(win)
	if err != nil {
		return Point{}, err
	}
	return Point{X: r.X, Y: r.Y}, nil
}

func (b *x11Backend) Move(title string, p Point) error {
	win, err := b.find(title)
	if err != nil {
		return err
	}
	_, client, err := b.frame(win)
	if err != nil {
		return err
	}
	return b.moveResize(win, p.X, p.Y, client.Width, client.Height)
}

func (b *x11Backend) Center(title string) error {
	win, err := b.find(title)
	if err != nil {
		return err
	}
	outer, client, err := b.frame(win)
	if err != nil {
		return err
	}

	area, err := b.monitorFor(outer)
	if err != nil {
		return err
	}
	p := centeredIn(area.X, area.Y, area.Width, area.Height, outer.Width, outer.Height)
	return b.moveResize(win, p.X, p.Y, client.Width, client.Height)
}

func (b *x11Backend) Close() error {
	b.xu.Conn().Close()
	return nil
}

// candidate is a top-level window carrying the looked-up title.
type candidate struct {
	win    xproto.Window
	pid    int
	hasPid bool
}

// find returns the top-level window of this process with the given title.
// Gio does not set _NET_WM_PID, so the first untagged match is claimed by
// tagging it with our pid; later instances then skip it.
func (b *x11Backend) find(title string) (xproto.Window, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		// No EWMH window manager: fall back to the root's children.
		tree, terr := xproto.QueryTree(b.xu.Conn(), b.xu.RootWin()).Reply()
		if terr != nil {
			return 0, fmt.Errorf("list windows: %w", terr)
		}
		clients = tree.Children
	}

	var candidates []candidate
	for _, win := range clients {
		if b.windowTitle(win) != title {
			continue
		}
		c := candidate{win: win}
		if pid, err := ewmh.WmPidGet(b.xu, win); err == nil {
			c.pid, c.hasPid = int(pid), true
		}
		candidates = append(candidates, c)
	}

	i, claim := pickCandidate(candidates, b.pid)
	if i < 0 {
		return 0, ErrWindowNotFound
	}
	win := candidates[i].win
	if claim {
		if err := ewmh.WmPidSet(b.xu, win, uint(b.pid)); err != nil {
			return 0, fmt.Errorf("tag window with pid: %w", err)
		}
	}
	return win, nil
}

// pickCandidate prefers a window already tagged with pid, then the first
// untagged one, which must be claimed. It returns -1 when nothing matches.
func pickCandidate(cs []candidate, pid int) (int, bool) {
	untagged := -1
	for i, c := range cs {
		if c.hasPid && c.pid == pid {
			return i, false
		}
		if !c.hasPid && untagged < 0 {
			untagged = i
		}
	}
	return untagged, untagged >= 0
}

func (b *x11Backend) windowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(b.xu, win); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(b.xu, win); err == nil {
		return title
	}
	return ""
}

// frame returns the outer frame rectangle and the client rectangle, both
// in root coordinates.
func (b *x11Backend) frame(win xproto.Window) (outer, client rect, err error) {
	client, err = b.geometry(win)
	if err != nil {
		return rect{}, rect{}, err
	}
	// Non-reparenting or absent window managers set no extents.
	ext, err := ewmh.FrameExtentsGet(b.xu, win)
	if err != nil {
		ext = nil
	}
	return frameRect(client, ext), client, nil
}

func frameRect(client rect, ext *ewmh.FrameExtents) rect {
	if ext == nil {
		return client
	}
	return rect{
		X:      client.X - ext.Left,
		Y:      client.Y - ext.Top,
		Width:  client.Width + ext.Left + ext.Right,
		Height: client.Height + ext.Top + ext.Bottom,
	}
}

// geometry returns the window rectangle in root coordinates.
func (b *x11Backend) geometry(win xproto.Window) (rect, error) {
	geom, err := xproto.GetGeometry(b.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return rect{}, fmt.Errorf("get window geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(b.xu.Conn(), win, b.xu.RootWin(), 0, 0).Reply()
	if err != nil {
		return rect{}, fmt.Errorf("translate window coordinates: %w", err)
	}

	return rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (b *x11Backend) moveResize(win xproto.Window, x, y, width, height int) error {
	// Prefer EWMH so the window manager accepts the request. With the
	// default gravity x and y place the frame's top-left corner.
	if err := ewmh.MoveresizeWindow(b.xu, win, x, y, width, height); err != nil {
		xwindow.New(b.xu, win).MoveResize(x, y, width, height)
	}
	return nil
}

// monitorFor returns the RandR monitor containing the center of r, the
// first active monitor, or the whole root window when RandR is unavailable.
func (b *x11Backend) monitorFor(r rect) (rect, error) {
	monitors := b.monitors()
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	for _, m := range monitors {
		if cx >= m.X && cx < m.X+m.Width && cy >= m.Y && cy < m.Y+m.Height {
			return m, nil
		}
	}
	if len(monitors) > 0 {
		return monitors[0], nil
	}

	root, err := xproto.GetGeometry(b.xu.Conn(), xproto.Drawable(b.xu.RootWin())).Reply()
	if err != nil {
		return rect{}, fmt.Errorf("get root geometry: %w", err)
	}
	return rect{Width: int(root.Width), Height: int(root.Height)}, nil
}

func (b *x11Backend) monitors() []rect {
	conn := b.xu.Conn()
	if err := randr.Init(conn); err != nil {
		return nil
	}
	resources, err := randr.GetScreenResources(conn, b.xu.RootWin()).Reply()
	if err != nil {
		return nil
	}

	var out []rect
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		out = append(out, rect{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return out
}
