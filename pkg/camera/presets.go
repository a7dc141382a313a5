package camera

import "sort"

// Preset names for common resolutions.
const (
	PresetDefault = "default"
	PresetQVGA    = "qvga"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	PresetDraft   = "draft"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetQVGA:    QVGAConfig(),
		PresetVGA:     DefaultConfig(),
		Preset720p:    HD720Config(),
		Preset1080p:   HD1080Config(),
		PresetDraft:   DraftConfig(),
	}
}

// PresetNames returns the sorted list of preset names.
func PresetNames() []string {
	names := make([]string, 0, len(Presets()))
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// Apply copies the preset's resolution and quality onto cfg, keeping the
// backend, device and still path.
func ApplyPreset(cfg Config, name string) (Config, bool) {
	preset := GetPreset(name)
	if preset == nil {
		return cfg, false
	}
	cfg.Width = preset.Width
	cfg.Height = preset.Height
	cfg.Quality = preset.Quality
	return cfg, true
}

// QVGAConfig returns 320x240. Smallest payloads; faces must be close.
func QVGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	return cfg
}

// HD720Config returns 720p.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config returns 1080p. Each frame is several hundred KB as base64.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	return cfg
}

// DraftConfig keeps 640x480 but lowers JPEG quality for slow links.
func DraftConfig() Config {
	cfg := DefaultConfig()
	cfg.Quality = 50
	return cfg
}
