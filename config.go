package waymarks

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.toml
var embeddedConfig []byte

// Config is the waymarks configuration, read from config.toml.
type Config struct {
	GeoNames GeoNamesConfig `mapstructure:"geonames"`
	Docs     DocsConfig     `mapstructure:"docs"`
}

// GeoNamesConfig locates the reference dataset remotely and on disk.
type GeoNamesConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	CountryInfoFile string        `mapstructure:"country_info_file"`
	CitiesFile      string        `mapstructure:"cities_file"` // may contain {iso}, e.g. "{iso}.zip"
	Admin1File      string        `mapstructure:"admin1_file"` // optional
	DownloadDir     string        `mapstructure:"download_dir"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// DocsConfig locates the persisted gazetteer.
type DocsConfig struct {
	Dir           string `mapstructure:"dir"`
	CountriesFile string `mapstructure:"countries_file"`
	CitiesFolder  string `mapstructure:"cities_folder"`
}

// isoPlaceholder in CitiesFile is replaced by the upper-case country code.
const isoPlaceholder = "{iso}"

// PerCountry reports whether cities come from one archive per country.
func (c GeoNamesConfig) PerCountry() bool {
	return strings.Contains(c.CitiesFile, isoPlaceholder)
}

// CountryInfoSource returns the countryInfo.txt data source.
func (c GeoNamesConfig) CountryInfoSource() DataSource {
	return c.source(c.CountryInfoFile, DataSourceGeonamesCountry)
}

// CitiesSource returns the cities data source for a country code.
func (c GeoNamesConfig) CitiesSource(code string) DataSource {
	file := strings.ReplaceAll(c.CitiesFile, isoPlaceholder, toUpper(code))
	return c.source(file, DataSourceGeonamesCities)
}

// Admin1Source returns the admin1 codes source, or false when not configured.
func (c GeoNamesConfig) Admin1Source() (DataSource, bool) {
	if c.Admin1File == "" {
		return DataSource{}, false
	}
	return c.source(c.Admin1File, DataSourceGeonamesAdmin1), true
}

func (c GeoNamesConfig) source(file string, id DataSourceID) DataSource {
	return DataSource{
		URL:  c.BaseURL + file,
		Path: filepath.Join(c.DownloadDir, filepath.Base(file)),
		ID:   id,
	}
}

// CountriesPath is the JSON file holding the country set.
func (d DocsConfig) CountriesPath() string {
	return filepath.Join(d.Dir, d.CountriesFile)
}

// CitiesPath is the JSON file holding one country's cities, keyed by its canonical name.
func (d DocsConfig) CitiesPath(canonical string) string {
	return filepath.Join(d.Dir, d.CitiesFolder, canonical+".json")
}

// LoadConfig reads configuration from path. An empty path searches for a
// "config" file in "." and "config", falling back to the embedded defaults.
// The file format follows its extension (toml, yaml, json, ...).
// WAYMARKS_* environment variables override file values
// (WAYMARKS_DOCS_DIR overrides docs.dir).
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("waymarks")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Embedded defaults register every key, so env overrides apply even
	// when the file on disk omits some of them.
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}

	// The file is read by its own viper so its extension, not the
	// embedded TOML type, picks the decoder.
	fv := viper.New()
	if path != "" {
		fv.SetConfigFile(path)
		if err := fv.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		fv.SetConfigName("config")
		fv.AddConfigPath(".")
		fv.AddConfigPath("config")
		if err := fv.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}
	if err := v.MergeConfigMap(fv.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("failed to merge config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.GeoNames.BaseURL != "" && !strings.HasSuffix(cfg.GeoNames.BaseURL, "/") {
		cfg.GeoNames.BaseURL += "/"
	}
	return cfg, nil
}
