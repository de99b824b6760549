package extension

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AdiechaHK/hooks"
)

// ManifestFile is the file name the Loader looks for in each extension
// directory.
const ManifestFile = "extension.yaml"

// Manifest describes one extension directory. The entrypoint field
// names a compiled-in Entrypoint registered via Register.
type Manifest struct {
	Name        string `yaml:"name"`
	Entrypoint  string `yaml:"entrypoint"`
	Description string `yaml:"description,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the extension should be loaded.
func (m *Manifest) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ReadManifest reads and validates the manifest in the given extension
// directory. A missing manifest file yields hooks.ErrManifestMissing.
func ReadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", hooks.ErrManifestMissing, dir)
		}
		return nil, fmt.Errorf("%w: reading manifest in %s: %v", hooks.ErrExtensionLoad, dir, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing manifest in %s: %v", hooks.ErrExtensionLoad, dir, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("%w: manifest in %s has no name", hooks.ErrExtensionLoad, dir)
	}
	if m.Entrypoint == "" {
		return nil, fmt.Errorf("%w: manifest for %q has no entrypoint", hooks.ErrExtensionLoad, m.Name)
	}
	return &m, nil
}
