// Package i18n provides internationalization support.
package i18n

import "sync"

// Language represents a UI language.
type Language string

const (
	EN Language = "en"
	RU Language = "ru"
)

var (
	mu      sync.RWMutex
	current = EN // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	EN: {
		// App
		"app_tooltip": "Winkeeper - remembers where its window was",

		// Tray menu
		"tray_booting":            "Starting...",
		"tray_running":            "Running",
		"tray_closing":            "Saving position...",
		"tray_terminated":         "Closed",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_language":           "Language",
		"tray_language_hint":      "Interface language",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Save window position and exit",

		// Main window
		"window_restored": "Restored placement",
		"window_state":    "State",
		"window_hint":     "Move this window, then close it. It will reopen in the same place.",
		"window_close":    "Esc or the close button saves the position",

		// Notifications
		"notify_restored": "Window restored",
		"notify_saved":    "Window position saved",
		"notify_error":    "Error",

		// Errors
		"error_title":    "Winkeeper",
		"error_load":     "Could not read the saved window position",
		"error_save":     "Could not save the window position",
		"error_platform": "Could not determine the window position",
	},
	RU: {
		// App
		"app_tooltip": "Winkeeper - запоминает положение окна",

		// Tray menu
		"tray_booting":            "Запуск...",
		"tray_running":            "Работает",
		"tray_closing":            "Сохранение положения...",
		"tray_terminated":         "Закрыто",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_language":           "Язык",
		"tray_language_hint":      "Язык интерфейса",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Сохранить положение окна и выйти",

		// Main window
		"window_restored": "Восстановленное положение",
		"window_state":    "Состояние",
		"window_hint":     "Переместите окно и закройте его. Оно откроется на том же месте.",
		"window_close":    "Esc или кнопка закрытия сохраняют положение",

		// Notifications
		"notify_restored": "Окно восстановлено",
		"notify_saved":    "Положение окна сохранено",
		"notify_error":    "Ошибка",

		// Errors
		"error_title":    "Winkeeper",
		"error_load":     "Не удалось прочитать сохранённое положение окна",
		"error_save":     "Не удалось сохранить положение окна",
		"error_platform": "Не удалось определить положение окна",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	if s, ok := translations[EN][key]; ok {
		return s
	}
	// Fallback to key itself
	return key
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{EN, RU}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
