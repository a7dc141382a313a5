package camera

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager holds the current capture configuration and handles updates.
// Changes apply the next time a source is created.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// OnConfigChange is called after each accepted change. Set it before
	// the manager is shared.
	OnConfigChange func(cfg Config) error
}

// NewManager creates a manager seeded with cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values, as decoded from JSON.
// A "preset" key is applied first so other keys can override it.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	return m.update(func(cfg Config) (Config, error) {
		return applyParams(cfg, params)
	})
}

// update runs change against the current config and stores the result,
// holding the lock throughout so concurrent updates are never lost.
// OnConfigChange runs after the lock is released.
func (m *Manager) update(change func(Config) (Config, error)) error {
	m.mu.Lock()
	cfg, err := change(m.config)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		m.mu.Unlock()
		return fmt.Errorf("validation failed: %v", problems)
	}
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

func applyParams(cfg Config, params map[string]interface{}) (Config, error) {
	if presetName, ok := params["preset"].(string); ok {
		var found bool
		cfg, found = ApplyPreset(cfg, presetName)
		if !found {
			return cfg, fmt.Errorf("unknown preset: %s", presetName)
		}
	}

	for key, value := range params {
		switch key {
		case "backend":
			if v, ok := value.(string); ok {
				cfg.Backend = Backend(v)
			}
		case "device":
			if v, ok := toInt(value); ok {
				cfg.Device = v
			}
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		case "still_path":
			if v, ok := value.(string); ok {
				cfg.StillPath = v
			}
		}
	}

	return cfg, nil
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	data, _ := json.Marshal(m.GetConfig())
	var result map[string]interface{}
	json.Unmarshal(data, &result)
	return result
}

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}
