// Package dialog предоставляет системные диалоги.
package dialog

import (
	"github.com/ncruces/zenity"
)

// ShowError показывает сообщение об ошибке и ждёт, пока его закроют.
func ShowError(title, message string) {
	zenity.Error(message, zenity.Title(title), zenity.ErrorIcon)
}
