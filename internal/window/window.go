// Package window provides the main application window.
//
// The window asks for no system decorations and draws its own title bar, so
// that a click on the close button reaches the application instead of
// destroying the window. Where the platform keeps its decorations anyway
// (X11), the own title bar is not drawn.
package window

import (
	"image/color"
	"sync"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// Title is the window title. Platform backends find the window by it, so
// it never changes with the UI language.
const Title = "Winkeeper"

// Config holds window configuration.
type Config struct {
	Width        int // Window width in dp
	Height       int // Window height in dp
	BGColor      color.NRGBA
	TextColor    color.NRGBA
	TextDimColor color.NRGBA
	AccentColor  color.NRGBA
	PanelColor   color.NRGBA
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Width:        420,
		Height:       220,
		BGColor:      color.NRGBA{R: 30, G: 30, B: 34, A: 255},
		TextColor:    color.NRGBA{R: 240, G: 240, B: 245, A: 255},
		TextDimColor: color.NRGBA{R: 140, G: 140, B: 150, A: 255},
		AccentColor:  color.NRGBA{R: 80, G: 200, B: 120, A: 255},
		PanelColor:   color.NRGBA{R: 45, G: 45, B: 50, A: 255},
	}
}

// Window is the main window.
type Window struct {
	mu        sync.Mutex
	config    Config
	placement string
	state     string

	onCloseRequested func()
	onDestroyed      func()
	onConfigured     func()

	window    *app.Window
	theme     *material.Theme
	deco      widget.Decorations
	decorated bool // decorations drawn by the platform
	running   bool
}

// New creates a window. Call Show to open it.
func New(cfg Config) *Window {
	th := material.NewTheme()
	th.Palette.Bg = cfg.BGColor
	th.Palette.Fg = cfg.TextColor
	th.Palette.ContrastBg = cfg.PanelColor
	th.Palette.ContrastFg = cfg.TextColor

	return &Window{
		config: cfg,
		theme:  th,
	}
}

// OnCloseRequested sets the callback for the close button and Escape.
// The window stays open until Destroy is called.
func (w *Window) OnCloseRequested(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onCloseRequested = fn
}

// OnDestroyed sets the callback run once the window is gone.
func (w *Window) OnDestroyed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onDestroyed = fn
}

// OnConfigured sets the callback run when the window system reports a
// configuration change (size, mode, decorations).
func (w *Window) OnConfigured(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onConfigured = fn
}

// SetStatus updates the placement and state lines.
func (w *Window) SetStatus(placement, state string) {
	w.mu.Lock()
	w.placement = placement
	w.state = state
	w.mu.Unlock()
	w.Invalidate()
}

// Show opens the window (non-blocking).
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.window = new(app.Window)
	w.window.Option(
		app.Title(Title),
		app.Size(unit.Dp(w.config.Width), unit.Dp(w.config.Height)),
		app.Decorated(false),
	)

	go w.runEventLoop(w.window)
}

// Destroy closes the window.
func (w *Window) Destroy() {
	w.mu.Lock()
	win := w.window
	w.mu.Unlock()

	if win != nil {
		win.Perform(system.ActionClose)
	}
}

// Invalidate requests a redraw.
func (w *Window) Invalidate() {
	w.mu.Lock()
	win := w.window
	w.mu.Unlock()

	if win != nil {
		win.Invalidate()
	}
}

func (w *Window) runEventLoop(win *app.Window) {
	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			w.mu.Lock()
			w.running = false
			fn := w.onDestroyed
			w.mu.Unlock()
			if fn != nil {
				fn()
			}
			return
		case app.ConfigEvent:
			if fn := w.configure(e.Config); fn != nil {
				go fn()
			}
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.handleInput(gtx, win)

			w.mu.Lock()
			placement, state := w.placement, w.state
			w.mu.Unlock()

			w.draw(gtx, placement, state)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) configure(cfg app.Config) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deco.Maximized = cfg.Mode == app.Maximized
	w.decorated = cfg.Decorated
	return w.onConfigured
}

// ownTitleBar reports whether the app draws the title bar.
func (w *Window) ownTitleBar() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.decorated
}

func (w *Window) handleInput(gtx layout.Context, win *app.Window) {
	closeRequested := false

	for {
		event, ok := gtx.Event(key.Filter{Name: key.NameEscape})
		if !ok {
			break
		}
		if e, ok := event.(key.Event); ok && e.State == key.Press {
			closeRequested = true
		}
	}

	wantClose := false
	if w.ownTitleBar() {
		var rest system.Action
		wantClose, rest = splitClose(w.deco.Update(gtx))
		if rest != 0 {
			win.Perform(rest)
		}
	}

	if closeRequested || wantClose {
		w.mu.Lock()
		fn := w.onCloseRequested
		w.mu.Unlock()
		if fn != nil {
			go fn()
		}
	}
}

// splitClose separates a close from the other decoration actions.
func splitClose(actions system.Action) (bool, system.Action) {
	return actions&system.ActionClose != 0, actions &^ system.ActionClose
}
