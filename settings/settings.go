// Package settings persists the user's session preferences (theme, persona,
// model, language, display name) to a TOML file with get/set/default
// semantics. The session core receives values from here; it never reads
// storage ad hoc.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Settings are the persisted preference values.
type Settings struct {
	Theme     string `toml:"theme"`
	PersonaID string `toml:"persona"`
	TextModel string `toml:"text_model"`
	Language  string `toml:"language"`
	UserName  string `toml:"user_name"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		Theme:     "dark",
		PersonaID: "default",
		TextModel: "gemini-2.5-flash",
		Language:  "en",
	}
}

// Store is a file-backed settings store. It is safe for concurrent use.
type Store struct {
	path string

	mu      sync.Mutex
	current Settings
}

// Open loads settings from path, falling back to defaults when the file does
// not exist yet. Fields absent from the file keep their default values.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		current: Defaults(),
	}

	if _, err := toml.DecodeFile(path, &s.current); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading settings from %s: %w", path, err)
		}
	}
	return s, nil
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies fn to the settings and persists the result. The stored
// settings are unchanged if persisting fails.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)

	if err := s.save(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// save writes settings to the backing file. Callers must hold mu.
func (s *Store) save(v Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}
