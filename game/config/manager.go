package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrPresetNotFound = errors.New("deck preset not found")
	ErrInvalidPreset  = errors.New("invalid deck preset")
)

// DeckPreset defines the suit and value vocabularies a room's deck is built
// from. Both are opaque to the rest of the server.
type DeckPreset struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Suits       []string `json:"suits"`
	Values      []string `json:"values"`
}

// PresetInfo summarizes an available preset for listing endpoints.
type PresetInfo struct {
	Filename    string `json:"filename"`
	PresetID    string `json:"preset_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CardCount   int    `json:"card_count"`
}

// Manager handles deck preset loading and caching.
type Manager struct {
	configDir     string
	defaultPreset *DeckPreset
	presets       map[string]*DeckPreset
	mu            sync.RWMutex
}

// NewManager creates a preset manager backed by configDir. A missing or
// empty directory is not fatal: the built-in Italian deck serves as the
// default so room creation always has a vocabulary.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{
		configDir: configDir,
		presets:   make(map[string]*DeckPreset),
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by name, reading from the cache first and the
// config directory second.
func (m *Manager) LoadPreset(name string) (*DeckPreset, error) {
	m.mu.RLock()
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset DeckPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}

	if err := ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	m.presets[name] = &preset
	return &preset, nil
}

// ListPresets returns information about all presets in the config directory.
func (m *Manager) ListPresets() ([]*PresetInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var presets []*PresetInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		preset, err := m.LoadPreset(name)
		if err != nil {
			// Skip invalid presets
			continue
		}

		presets = append(presets, &PresetInfo{
			Filename:    entry.Name(),
			PresetID:    name,
			Name:        preset.Name,
			Description: preset.Description,
			CardCount:   len(preset.Suits) * len(preset.Values),
		})
	}

	return presets, nil
}

// GetDefault returns the default deck preset.
func (m *Manager) GetDefault() *DeckPreset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name.
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// SavePreset validates a preset and writes it to the config directory.
func (m *Manager) SavePreset(name string, preset *DeckPreset) error {
	if err := ValidatePreset(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()

	return nil
}

// ValidatePreset checks a preset for empty or duplicated vocabularies.
func ValidatePreset(preset *DeckPreset) error {
	if preset == nil {
		return errors.New("preset is nil")
	}
	if preset.Name == "" {
		return errors.New("preset name is required")
	}
	if len(preset.Suits) == 0 {
		return errors.New("preset must define at least one suit")
	}
	if len(preset.Values) == 0 {
		return errors.New("preset must define at least one value")
	}

	seenSuits := make(map[string]bool)
	for _, s := range preset.Suits {
		if s == "" {
			return errors.New("empty suit name")
		}
		if seenSuits[s] {
			return fmt.Errorf("duplicate suit %q", s)
		}
		seenSuits[s] = true
	}

	seenValues := make(map[string]bool)
	for _, v := range preset.Values {
		if v == "" {
			return errors.New("empty value name")
		}
		if seenValues[v] {
			return fmt.Errorf("duplicate value %q", v)
		}
		seenValues[v] = true
	}

	return nil
}

// loadDefaultPreset loads italian.json as the default, falling back to the
// first valid preset and finally to the built-in deck.
func (m *Manager) loadDefaultPreset() error {
	preset, err := m.LoadPreset("italian")
	if err != nil {
		presets, listErr := m.ListPresets()
		if listErr != nil || len(presets) == 0 {
			m.defaultPreset = builtinItalianPreset()
			return nil
		}

		preset, err = m.LoadPreset(strings.TrimSuffix(presets[0].Filename, ".json"))
		if err != nil {
			m.defaultPreset = builtinItalianPreset()
			return nil
		}
	}

	m.defaultPreset = preset
	return nil
}

// builtinItalianPreset is the traditional 40-card deck the original table
// game is played with.
func builtinItalianPreset() *DeckPreset {
	return &DeckPreset{
		Name:        "Italian 40-card",
		Description: "Traditional scopa/briscola deck",
		Suits:       []string{"denari", "coppe", "bastoni", "spade"},
		Values:      []string{"1", "2", "3", "4", "5", "6", "7", "alfiere", "regina", "re"},
	}
}
