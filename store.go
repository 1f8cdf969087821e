package waymarks

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
)

// json sorts map keys, which keeps persisted files deterministic.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geohash returns the geohash of the position.
func (c Coordinates) Geohash() string {
	return geohash.Encode(c.Lat, c.Lon)
}

// Countries is the persisted set of canonical country names.
type Countries struct {
	names map[string]struct{}
}

// NewCountries returns an empty set.
func NewCountries() *Countries {
	return &Countries{names: make(map[string]struct{})}
}

// Add inserts name and reports whether it was new.
func (c *Countries) Add(name string) bool {
	if _, ok := c.names[name]; ok {
		return false
	}
	c.names[name] = struct{}{}
	return true
}

// Contains reports whether name is in the set. The match is exact.
func (c *Countries) Contains(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Len returns the number of countries.
func (c *Countries) Len() int {
	return len(c.names)
}

// Names returns the countries sorted.
func (c *Countries) Names() []string {
	names := make([]string, 0, len(c.names))
	for n := range c.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadCountries reads the set from path. It fails with ErrNotFound when the
// file does not exist and ErrDecode when it is not a JSON array of names.
func LoadCountries(fsys afero.Fs, path string) (*Countries, error) {
	var names []string
	if err := readJSON(fsys, path, &names); err != nil {
		return nil, err
	}
	c := NewCountries()
	for _, n := range names {
		c.Add(n)
	}
	return c, nil
}

// Save writes the set to path as a sorted JSON array.
func (c *Countries) Save(fsys afero.Fs, path string) error {
	return writeJSON(fsys, path, c.Names())
}

// Cities maps city names of one country to their coordinates.
type Cities struct {
	entries map[string]Coordinates
}

// NewCities returns an empty collection.
func NewCities() *Cities {
	return &Cities{entries: make(map[string]Coordinates)}
}

// Add inserts a city and reports whether it was new. An existing name keeps
// its original coordinates.
func (c *Cities) Add(name string, coords Coordinates) bool {
	if _, ok := c.entries[name]; ok {
		return false
	}
	c.entries[name] = coords
	return true
}

// Get returns the coordinates stored for name.
func (c *Cities) Get(name string) (Coordinates, bool) {
	coords, ok := c.entries[name]
	return coords, ok
}

// Len returns the number of cities.
func (c *Cities) Len() int {
	return len(c.entries)
}

// Names returns the city names sorted.
func (c *Cities) Names() []string {
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadCities reads a country's cities from path, failing like LoadCountries.
func LoadCities(fsys afero.Fs, path string) (*Cities, error) {
	entries := make(map[string]Coordinates)
	if err := readJSON(fsys, path, &entries); err != nil {
		return nil, err
	}
	if entries == nil { // a literal null
		entries = make(map[string]Coordinates)
	}
	return &Cities{entries: entries}, nil
}

// Save writes the collection to path as a JSON object sorted by name.
func (c *Cities) Save(fsys afero.Fs, path string) error {
	return writeJSON(fsys, path, c.entries)
}

func readJSON(fsys afero.Fs, path string, v any) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return nil
}

// writeJSON replaces path with the JSON encoding of v. The content goes to a
// temporary file in the same directory first and is renamed over path, so
// readers see either the old file or the complete new one.
func writeJSON(fsys afero.Fs, path string, v any) error {
	compact, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrPersist, path, err)
	}
	// jsoniter's own indentation misplaces nested objects inside maps.
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, compact, "", "  "); err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrPersist, path, err)
	}
	buf.WriteByte('\n')
	data := buf.Bytes()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %v", ErrPersist, dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for %s: %v", ErrPersist, path, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrPersist, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrPersist, tmpName, err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: renaming %s to %s: %v", ErrPersist, tmpName, path, err)
	}
	success = true
	return nil
}
