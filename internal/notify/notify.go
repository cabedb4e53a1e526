// Package notify предоставляет системные уведомления.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"winkeeper/internal/i18n"
)

const appName = "Winkeeper"

// Sender отправляет одно уведомление. По умолчанию beeep.Notify.
type Sender func(title, message, icon string) error

// Notifier отправляет уведомления.
type Notifier struct {
	mu      sync.Mutex
	enabled bool
	send    Sender
}

// New создаёт Notifier на основе beeep.
func New(enabled bool) *Notifier {
	return NewWithSender(enabled, func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	})
}

// NewWithSender создаёт Notifier, отправляющий уведомления через send.
func NewWithSender(enabled bool, send Sender) *Notifier {
	return &Notifier{
		enabled: enabled,
		send:    send,
	}
}

// Toggle переключает уведомления и возвращает новое значение.
func (n *Notifier) Toggle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = !n.enabled
	return n.enabled
}

// Enabled возвращает true, если уведомления включены.
func (n *Notifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Restored сообщает о положении окна, применённом при запуске.
func (n *Notifier) Restored(placement string) {
	n.notify(i18n.T("notify_restored"), placement)
}

// Saved сообщает о сохранённом положении окна.
func (n *Notifier) Saved(placement string) {
	n.notify(i18n.T("notify_saved"), placement)
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	n.mu.Lock()
	enabled, send := n.enabled, n.send
	n.mu.Unlock()

	if !enabled {
		return
	}
	// Ошибки уведомлений не критичны
	_ = send(appName+": "+title, message, "")
}
