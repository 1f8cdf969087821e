package waymarks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://download.geonames.org/export/dump/", cfg.GeoNames.BaseURL)
	assert.Equal(t, "countryInfo.txt", cfg.GeoNames.CountryInfoFile)
	assert.Equal(t, "cities1000.zip", cfg.GeoNames.CitiesFile)
	assert.Equal(t, "admin1CodesASCII.txt", cfg.GeoNames.Admin1File)
	assert.Equal(t, 60*time.Second, cfg.GeoNames.Timeout)
	assert.Equal(t, "./docs", cfg.Docs.Dir)
	assert.Equal(t, "countries.json", cfg.Docs.CountriesFile)
	assert.Equal(t, "cities", cfg.Docs.CitiesFolder)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waymarks.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[geonames]
base_url = "http://mirror.local/dump"
timeout = "5m"

[docs]
dir = "/srv/gazetteer"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local/dump/", cfg.GeoNames.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.GeoNames.Timeout)
	assert.Equal(t, "/srv/gazetteer", cfg.Docs.Dir)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "cities1000.zip", cfg.GeoNames.CitiesFile)
	assert.Equal(t, "countries.json", cfg.Docs.CountriesFile)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waymarks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
geonames:
  cities_file: "{iso}.zip"
docs:
  dir: /srv/yaml-docs
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "{iso}.zip", cfg.GeoNames.CitiesFile)
	assert.Equal(t, "/srv/yaml-docs", cfg.Docs.Dir)
	assert.Equal(t, "countryInfo.txt", cfg.GeoNames.CountryInfoFile)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waymarks.toml")
	require.NoError(t, os.WriteFile(path, []byte("[docs]\ndir = \"/from/file\"\n"), 0644))
	t.Setenv("WAYMARKS_DOCS_DIR", "/from/env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Docs.Dir)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("WAYMARKS_DOCS_DIR", "/env/docs")
	t.Setenv("WAYMARKS_GEONAMES_CITIES_FILE", "{iso}.zip")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/env/docs", cfg.Docs.Dir)
	assert.Equal(t, "{iso}.zip", cfg.GeoNames.CitiesFile)
	assert.True(t, cfg.GeoNames.PerCountry())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[docs\ndir = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestGeoNamesConfig_Sources(t *testing.T) {
	cfg := GeoNamesConfig{
		BaseURL:         "https://download.geonames.org/export/dump/",
		CountryInfoFile: "countryInfo.txt",
		CitiesFile:      "cities1000.zip",
		DownloadDir:     "data",
	}

	ci := cfg.CountryInfoSource()
	assert.Equal(t, "https://download.geonames.org/export/dump/countryInfo.txt", ci.URL)
	assert.Equal(t, filepath.Join("data", "countryInfo.txt"), ci.Path)
	assert.Equal(t, DataSourceGeonamesCountry, ci.ID)
	assert.False(t, ci.Archive())

	cities := cfg.CitiesSource("de")
	assert.Equal(t, "https://download.geonames.org/export/dump/cities1000.zip", cities.URL)
	assert.Equal(t, filepath.Join("data", "cities1000.txt"), cities.TextPath())
	assert.True(t, cities.Archive())
	assert.False(t, cfg.PerCountry())

	_, ok := cfg.Admin1Source()
	assert.False(t, ok)

	cfg.CitiesFile = "{iso}.zip"
	cfg.Admin1File = "admin1CodesASCII.txt"
	de := cfg.CitiesSource("de")
	assert.Equal(t, "https://download.geonames.org/export/dump/DE.zip", de.URL)
	assert.Equal(t, filepath.Join("data", "DE.zip"), de.Path)
	assert.Equal(t, filepath.Join("data", "DE.txt"), de.TextPath())

	admin1, ok := cfg.Admin1Source()
	require.True(t, ok)
	assert.Equal(t, DataSourceGeonamesAdmin1, admin1.ID)
}

func TestDocsConfig_Paths(t *testing.T) {
	docs := DocsConfig{Dir: "docs", CountriesFile: "countries.json", CitiesFolder: "cities"}
	assert.Equal(t, filepath.Join("docs", "countries.json"), docs.CountriesPath())
	assert.Equal(t, filepath.Join("docs", "cities", "United_Arab_Emirates.json"), docs.CitiesPath("United_Arab_Emirates"))
}
