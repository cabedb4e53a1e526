// Package config сохраняет положение главного окна между запусками.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"winkeeper/internal/configdir"
	"winkeeper/internal/logger"
	"winkeeper/internal/placement"
)

// FileName - имя файла с положением окна в каталоге конфигурации.
const FileName = "config.yaml"

// ErrMalformed означает, что файл есть, но разобрать его нельзя.
var ErrMalformed = errors.New("malformed placement record")

// Store загружает и сохраняет положение окна. Состояния не хранит:
// каталог определяется заново при каждом вызове.
type Store struct {
	dirs configdir.Provider
	log  *logger.Logger
}

// NewStore создаёт хранилище в каталоге, который возвращает dirs.
func NewStore(dirs configdir.Provider, log *logger.Logger) *Store {
	return &Store{
		dirs: dirs,
		log:  log.WithComponent("config"),
	}
}

// Path возвращает путь к файлу конфигурации.
func (s *Store) Path() (string, error) {
	dir, err := s.dirs.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}

// Load читает сохранённое положение. Если файла нет, возвращает положение
// по умолчанию; остальные ошибки чтения и разбора возвращаются.
func (s *Store) Load() (placement.Placement, error) {
	path, err := s.Path()
	if err != nil {
		return placement.Placement{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Infow("no saved placement, using default", "path", path)
		return placement.Default(), nil
	}
	if err != nil {
		return placement.Placement{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return placement.Placement{}, fmt.Errorf("read %s: %w", path, err)
	}

	p, err := placement.Parse(data)
	if err != nil {
		return placement.Placement{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	s.log.Infow("loaded placement", "path", path, "placement", p.String())
	return p, nil
}

// Save записывает p в файл конфигурации, создавая недостающие каталоги
// и заменяя прежнее содержимое.
func (s *Store) Save(p placement.Placement) error {
	dir, err := s.dirs.ConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	data, err := placement.Marshal(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.log.Infow("saved placement", "path", path, "placement", p.String())
	return nil
}
