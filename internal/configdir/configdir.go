// Package configdir resolves the per-user configuration directory of an
// application following each operating system's convention.
package configdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Provider supplies the directory that holds the application's config files.
type Provider interface {
	ConfigDir() (string, error)
}

// ProjectDirs derives the config directory from a reverse-domain identifier,
// e.g. com / meanbeanmachine / winkeeper.
//
//	Linux:   $XDG_CONFIG_HOME/winkeeper
//	Windows: %APPDATA%\meanbeanmachine\winkeeper\config
//	macOS:   ~/Library/Application Support/com.meanbeanmachine.winkeeper
type ProjectDirs struct {
	Qualifier    string
	Organization string
	Application  string
}

// ConfigDir implements Provider.
func (p ProjectDirs) ConfigDir() (string, error) {
	if strings.TrimSpace(p.Application) == "" {
		return "", errors.New("configdir: application name is empty")
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("configdir: %w", err)
	}
	return p.dirFor(runtime.GOOS, base), nil
}

// dirFor joins the OS-specific project path onto the user config base
// returned by os.UserConfigDir.
func (p ProjectDirs) dirFor(goos, base string) string {
	switch goos {
	case "windows":
		parts := []string{base}
		if p.Organization != "" {
			parts = append(parts, p.Organization)
		}
		parts = append(parts, p.Application, "config")
		return filepath.Join(parts...)
	case "darwin", "ios":
		return filepath.Join(base, p.bundleID())
	default:
		return filepath.Join(base, strings.ToLower(strings.ReplaceAll(p.Application, " ", "")))
	}
}

func (p ProjectDirs) bundleID() string {
	var parts []string
	for _, s := range []string{p.Qualifier, p.Organization, p.Application} {
		if s = strings.ReplaceAll(strings.TrimSpace(s), " ", "-"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// Static is a Provider that always returns the same directory.
type Static string

// ConfigDir implements Provider.
func (s Static) ConfigDir() (string, error) {
	if s == "" {
		return "", errors.New("configdir: static directory is empty")
	}
	return string(s), nil
}
