// Package settings persists the user-editable preferences: the recording
// hotkey, toggle mode, model and auto-start.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const (
	KeyHotkey     = "hotkey"
	KeyToggleMode = "toggle_mode"
	KeyModel      = "model"
	KeyAutoStart  = "auto_start"
)

// Models offered for selection.
var Models = []string{"tiny.en", "base.en", "small.en", "medium.en", "large-v3"}

// Settings is a snapshot of the stored values.
type Settings struct {
	Hotkey     string `json:"hotkey" mapstructure:"hotkey"`
	ToggleMode bool   `json:"toggle_mode" mapstructure:"toggle_mode"`
	Model      string `json:"model" mapstructure:"model"`
	AutoStart  bool   `json:"auto_start" mapstructure:"auto_start"`
}

// Defaults returns the values used when nothing is stored.
func Defaults() Settings {
	return Settings{
		Hotkey:     "ctrl+alt+space",
		ToggleMode: false,
		Model:      "base.en",
		AutoStart:  false,
	}
}

// Store reads and writes settings through viper. Every Update writes the file.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads path, merging stored values over defaults. A missing file is
// not an error; it is created on the first Update.
func Open(path string, defaults Settings) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(KeyHotkey, defaults.Hotkey)
	v.SetDefault(KeyToggleMode, defaults.ToggleMode)
	v.SetDefault(KeyModel, defaults.Model)
	v.SetDefault(KeyAutoStart, defaults.AutoStart)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{
		Hotkey:     s.v.GetString(KeyHotkey),
		ToggleMode: s.v.GetBool(KeyToggleMode),
		Model:      s.v.GetString(KeyModel),
		AutoStart:  s.v.GetBool(KeyAutoStart),
	}
}

// Update applies fn to the current settings and saves the result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := Settings{
		Hotkey:     s.v.GetString(KeyHotkey),
		ToggleMode: s.v.GetBool(KeyToggleMode),
		Model:      s.v.GetString(KeyModel),
		AutoStart:  s.v.GetBool(KeyAutoStart),
	}
	fn(&cur)
	s.v.Set(KeyHotkey, cur.Hotkey)
	s.v.Set(KeyToggleMode, cur.ToggleMode)
	s.v.Set(KeyModel, cur.Model)
	s.v.Set(KeyAutoStart, cur.AutoStart)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return cur, fmt.Errorf("create settings dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return cur, fmt.Errorf("write settings: %w", err)
	}
	return cur, nil
}

// ValidModel reports whether m is one of Models.
func ValidModel(m string) bool {
	for _, x := range Models {
		if x == m {
			return true
		}
	}
	return false
}
