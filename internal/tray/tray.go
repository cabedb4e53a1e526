// Package tray предоставляет системный трей с меню.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"winkeeper/internal/i18n"
	"winkeeper/internal/icon"
	"winkeeper/internal/session"
)

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnNotificationsToggle func() bool
	OnLanguageChange      func(i18n.Language)
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks
	mu        sync.Mutex
	state     session.State
	notify    bool

	status   *systray.MenuItem
	notifyOn *systray.MenuItem
	language *systray.MenuItem
	langs    map[i18n.Language]*systray.MenuItem
	quitBtn  *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, notificationsEnabled bool) *Tray {
	return &Tray{
		callbacks: callbacks,
		notify:    notificationsEnabled,
		langs:     make(map[i18n.Language]*systray.MenuItem),
	}
}

// Run запускает системный трей. Блокирует до вызова Quit.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {})
}

func (t *Tray) onReady() {
	systray.SetIcon(iconFor(t.state))
	systray.SetTitle("Winkeeper")
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.status = systray.AddMenuItem(StatusText(t.state), "")
	t.status.Disable()

	systray.AddSeparator()

	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.notify)

	t.language = systray.AddMenuItem(i18n.T("tray_language"), i18n.T("tray_language_hint"))
	current := i18n.GetLanguage()
	for _, lang := range i18n.AvailableLanguages() {
		t.langs[lang] = t.language.AddSubMenuItemCheckbox(i18n.LanguageName(lang), "", lang == current)
		go t.handleLanguage(lang, t.langs[lang])
	}

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		// Выход только запрашивает закрытие, трей закрывается вслед за окном
		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
		}
	}
}

func (t *Tray) handleLanguage(lang i18n.Language, item *systray.MenuItem) {
	for range item.ClickedCh {
		for l, it := range t.langs {
			if l == lang {
				it.Check()
			} else {
				it.Uncheck()
			}
		}
		if t.callbacks.OnLanguageChange != nil {
			t.callbacks.OnLanguageChange(lang)
		}
	}
}

// SetState обновляет иконку и строку статуса по состоянию сессии.
func (t *Tray) SetState(state session.State) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	systray.SetIcon(iconFor(state))
	systray.SetTooltip("Winkeeper - " + StatusText(state))
	if t.status != nil {
		t.status.SetTitle(StatusText(state))
	}
}

// Quit закрывает системный трей, после чего Run возвращается.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if t.status != nil {
		t.status.SetTitle(StatusText(state))
	}
	if t.notifyOn != nil {
		t.notifyOn.SetTitle(i18n.T("tray_notifications"))
		t.notifyOn.SetTooltip(i18n.T("tray_notifications_hint"))
	}
	if t.language != nil {
		t.language.SetTitle(i18n.T("tray_language"))
		t.language.SetTooltip(i18n.T("tray_language_hint"))
	}
	if t.quitBtn != nil {
		t.quitBtn.SetTitle(i18n.T("tray_quit"))
		t.quitBtn.SetTooltip(i18n.T("tray_quit_hint"))
	}
}

// StatusText возвращает локализованное название состояния.
func StatusText(state session.State) string {
	switch state {
	case session.StateRunning:
		return i18n.T("tray_running")
	case session.StateClosingRequested:
		return i18n.T("tray_closing")
	case session.StateTerminated:
		return i18n.T("tray_terminated")
	default:
		return i18n.T("tray_booting")
	}
}

func iconFor(state session.State) []byte {
	switch state {
	case session.StateRunning:
		return icon.Running
	case session.StateClosingRequested:
		return icon.Saving
	default:
		return icon.Idle
	}
}
