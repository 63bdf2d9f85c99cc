package emulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// presetsFile is the root structure of a presets YAML file:
//
//	presets:
//	  - id: pixel-7
//	    name: Pixel 7
//	    width: 412
//	    height: 915
//	    category: phone
type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

// Loader reads device presets from a YAML file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads, parses and validates the presets file.
func (l *Loader) Load() ([]Preset, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes and validates a presets YAML document.
func ParsePresets(data []byte) ([]Preset, error) {
	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets yaml: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("no presets found")
	}

	seen := make(map[string]bool, len(file.Presets))
	for _, p := range file.Presets {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return file.Presets, nil
}
