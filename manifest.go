package waymarks

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is a batch of add-cities requests:
//
//	countries:
//	  - country: DE
//	    cities: [Berlin, Hamburg]
//	  - country: France
//	    cities: [Paris]
type Manifest struct {
	Countries []ManifestEntry `yaml:"countries"`
}

// ManifestEntry is one country and the cities to add to it.
type ManifestEntry struct {
	Country string   `yaml:"country"`
	Cities  []string `yaml:"cities"`
}

// LoadManifest reads a YAML manifest.
func LoadManifest(fsys afero.Fs, path string) (Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Manifest{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	for i, e := range m.Countries {
		if e.Country == "" {
			return Manifest{}, fmt.Errorf("%w: %s: entry %d has no country", ErrDecode, path, i+1)
		}
	}
	return m, nil
}
