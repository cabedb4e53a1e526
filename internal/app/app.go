// Package app связывает окно, трей и сессию размещения окна.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"winkeeper/internal/config"
	"winkeeper/internal/configdir"
	"winkeeper/internal/dialog"
	"winkeeper/internal/i18n"
	"winkeeper/internal/logger"
	"winkeeper/internal/notify"
	"winkeeper/internal/platform"
	"winkeeper/internal/session"
	"winkeeper/internal/tray"
	"winkeeper/internal/window"
)

const (
	// WaitTimeout - сколько ждать появления окна при запуске
	WaitTimeout  = 5 * time.Second
	PollInterval = 50 * time.Millisecond

	// TrackInterval - период опроса позиции окна, пока оно открыто
	TrackInterval = time.Second
)

// Dirs определяет каталог конфигурации приложения.
var Dirs = configdir.ProjectDirs{
	Qualifier:    "com",
	Organization: "meanbeanmachine",
	Application:  "winkeeper",
}

// Подменяются в тестах.
var (
	exit      = os.Exit
	showError = dialog.ShowError
)

// App представляет главное приложение.
type App struct {
	log      *logger.Logger
	backend  platform.Backend
	session  *session.Session
	window   *window.Window
	tray     *tray.Tray
	notifier *notify.Notifier

	cancel  context.CancelFunc
	signals chan os.Signal

	mu      sync.Mutex
	stopped bool // Run завершается, новые запросы закрытия не принимаются
	closing sync.WaitGroup
}

// New создаёт приложение и загружает сохранённое положение окна.
func New(log *logger.Logger) (*App, error) {
	store := config.NewStore(Dirs, log)
	if path, err := store.Path(); err == nil {
		log.Infow("placement file", "path", path)
	}

	backend, err := platform.New()
	if err != nil {
		return nil, err
	}

	sess := session.New(store, backend, session.Config{
		Title:        window.Title,
		WaitTimeout:  WaitTimeout,
		PollInterval: PollInterval,
	}, log)

	if _, err := sess.Load(); err != nil {
		backend.Close()
		return nil, err
	}

	a := &App{
		log:      log.WithComponent("app"),
		backend:  backend,
		session:  sess,
		window:   window.New(window.DefaultConfig()),
		notifier: notify.New(true),
		signals:  make(chan os.Signal, 1),
	}

	a.tray = tray.New(tray.Callbacks{
		OnNotificationsToggle: a.notifier.Toggle,
		OnLanguageChange:      a.onLanguageChange,
		OnQuit:                a.requestClose,
	}, a.notifier.Enabled())

	a.window.OnCloseRequested(a.requestClose)
	a.window.OnConfigured(a.trackPosition)
	a.window.OnDestroyed(a.onDestroyed)
	sess.OnStateChange(a.onStateChange)
	a.refreshStatus()

	return a, nil
}

// Run показывает окно и блокируется до его уничтожения.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	signal.Notify(a.signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.signals)

	a.tray.Run(func() {
		a.window.Show()
		go a.boot(ctx)
		go a.watchSignals(ctx)
	})

	a.drainCloses()
	cancel()
}

// Close освобождает ресурсы платформы.
func (a *App) Close() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.WithError(err).Warnw("close platform backend")
		}
	}
}

func (a *App) boot(ctx context.Context) {
	pos, err := a.session.Start(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.fatal(i18n.T("error_platform"), err)
		return
	}
	a.log.Infow("window ready", "position", pos.String())
	a.notifier.Restored(a.session.Placement().String())

	go a.track(ctx)

	// Закрытие, запрошенное во время запуска
	if a.session.TakePendingClose() {
		a.log.Infow("handling close requested during boot")
		a.requestClose()
	}
}

// track обновляет последнюю известную позицию окна: она сохраняется, если
// окно закроет оконный менеджер.
func (a *App) track(ctx context.Context) {
	ticker := time.NewTicker(TrackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.trackPosition()
		}
	}
}

func (a *App) trackPosition() {
	if a.session.State() != session.StateRunning {
		return
	}
	if _, err := a.session.Track(); err != nil {
		a.log.WithError(err).Debugw("track window position")
	}
}

func (a *App) watchSignals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-a.signals:
			a.log.Infow("received signal", "signal", sig.String())
			a.requestClose()
		}
	}
}

// requestClose - единая точка входа для всех запросов закрытия: кнопка
// окна, Escape, трей и сигналы ОС.
func (a *App) requestClose() {
	if !a.beginClose() {
		return
	}
	defer a.closing.Done()

	err := a.session.RequestClose(a.window)
	switch {
	case err == nil:
		a.notifier.Saved(a.session.Placement().String())
	case errors.Is(err, session.ErrClosePending):
		a.log.Infow("close requested while booting, deferred")
	case errors.Is(err, session.ErrNotRunning):
		a.log.Debugw("close request ignored", "state", a.session.State().String())
	default:
		a.fatal(i18n.T("error_save"), err)
	}
}

// beginClose регистрирует запрос закрытия, если Run ещё не завершается.
func (a *App) beginClose() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.closing.Add(1)
	return true
}

// drainCloses дожидается запросов закрытия, которые уже выполняются.
func (a *App) drainCloses() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
	a.closing.Wait()
}

// onDestroyed вызывается после уничтожения окна. Если окно закрыл оконный
// менеджер, сессия сохраняет позицию сама.
func (a *App) onDestroyed() {
	saved, err := a.session.Destroyed()
	if err != nil {
		a.fatal(i18n.T("error_save"), err)
		return
	}
	if saved {
		a.notifier.Saved(a.session.Placement().String())
	}

	if a.cancel != nil {
		a.cancel()
	}
	if a.tray != nil {
		a.tray.Quit()
	}
}

func (a *App) onStateChange(state session.State) {
	a.tray.SetState(state)
	a.refreshStatus()
}

func (a *App) onLanguageChange(lang i18n.Language) {
	a.log.Infow("UI language changed", "language", string(lang))
	i18n.SetLanguage(lang)
	a.tray.RefreshUI()
	a.refreshStatus()
}

func (a *App) refreshStatus() {
	a.window.SetStatus(a.session.Placement().String(), tray.StatusText(a.session.State()))
}

func (a *App) fatal(msg string, err error) {
	a.notifier.Error(msg)
	Fatal(a.log, msg, err)
}

// FatalStartup сообщает об ошибке, которую вернул New.
func FatalStartup(log *logger.Logger, err error) {
	msg := i18n.T("error_load")
	if errors.Is(err, platform.ErrUnsupported) {
		msg = i18n.T("error_platform")
	}
	Fatal(log, msg, err)
}

// Fatal пишет ошибку в лог, показывает диалог и завершает процесс с кодом 1.
func Fatal(log *logger.Logger, msg string, err error) {
	log.Errorw(msg, "error", err)
	showError(i18n.T("error_title"), msg+"\n\n"+err.Error())
	_ = log.Sync()
	exit(1)
}
