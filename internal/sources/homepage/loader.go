package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Homepage template variables ({{HOMEPAGE_VAR_...}}) are not resolvable here.
var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// LoadFile reads and parses a bookmarks.yaml file.
func LoadFile(path string) (BookmarksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	return Parse(data)
}

// Parse decodes bookmarks.yaml content. Template variables become empty
// strings, so entries whose href was templated are later skipped.
func Parse(data []byte) (BookmarksConfig, error) {
	data = templateVar.ReplaceAll(data, []byte(`""`))

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	return config, nil
}
