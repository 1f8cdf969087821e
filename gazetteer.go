// Package waymarks maintains a local gazetteer: a set of countries and, per
// country, city coordinates resolved against the Geonames dump.
//
// Example:
//
//	cfg, err := waymarks.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ref := waymarks.NewGeoNames(cfg.GeoNames, afero.NewOsFs(), nil, nil)
//	g := waymarks.NewGazetteer(cfg.Docs, ref)
//	err = g.AddCities(ctx, "DE", []string{"Berlin", "Hamburg"})
package waymarks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// Gazetteer adds reference cities to the persisted gazetteer.
// Not safe for concurrent use; run one operation at a time.
type Gazetteer struct {
	docs   DocsConfig
	ref    Reference
	fs     afero.Fs
	logger *slog.Logger
	report *Reporter
}

// Option is a functional option for configuring a Gazetteer.
type Option func(*Gazetteer)

// WithFs sets the filesystem holding the persisted gazetteer (default: OS filesystem).
func WithFs(fsys afero.Fs) Option {
	return func(g *Gazetteer) {
		g.fs = fsys
	}
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gazetteer) {
		g.logger = logger
	}
}

// WithOutput sets where outcome lines are written (default: stdout).
func WithOutput(w io.Writer) Option {
	return func(g *Gazetteer) {
		g.report = NewReporter(w)
	}
}

// NewGazetteer returns a Gazetteer persisting under docs and resolving against ref.
func NewGazetteer(docs DocsConfig, ref Reference, opts ...Option) *Gazetteer {
	g := &Gazetteer{
		docs:   docs,
		ref:    ref,
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.report == nil {
		g.report = NewReporter(os.Stdout)
	}
	return g
}

// Reporter returns the outcome reporter.
func (g *Gazetteer) Reporter() *Reporter {
	return g.report
}

// AddCities resolves countryToken, records the country, then adds every
// requested city found in the reference data for that country.
//
// Each outcome (added, already exists, not found) is reported; only
// failures to resolve, acquire, decode or persist are returned as errors.
// Files are rewritten only when something was added.
func (g *Gazetteer) AddCities(ctx context.Context, countryToken string, cityNames []string) error {
	country, err := g.resolveCountry(ctx, countryToken)
	if err != nil {
		return err
	}
	logger := g.logger.With(slog.String("country", country.Name), slog.String("iso", country.Code))

	if err := g.updateCountry(country); err != nil {
		return err
	}

	places, err := g.ref.Places(ctx, country.Code)
	if err != nil {
		return fmt.Errorf("loading places for %s: %w", country.Name, err)
	}
	matches := MatchCities(country.Code, cityNames, places)
	logger.Debug("matched cities", slog.Int("requested", matches.Len()), slog.Int("places", len(places)))
	g.logRegions(ctx, logger, matches)

	path := g.docs.CitiesPath(country.Canonical())
	cities, err := LoadCities(g.fs, path)
	if errors.Is(err, ErrNotFound) {
		cities = NewCities()
	} else if err != nil {
		return fmt.Errorf("loading cities of %s: %w", country.Name, err)
	}

	changed := false
	for _, m := range matches.All() {
		if !m.Found() {
			g.report.CityNotFound(m.Requested, country.Canonical())
			continue
		}
		coords := m.Place.Coordinates()
		if cities.Add(m.Place.Name, coords) {
			changed = true
			g.report.CityAdded(m.Place.Name, coords)
		} else {
			g.report.CityExists(m.Place.Name, country.Canonical())
		}
	}

	if !changed {
		logger.Debug("no new cities, leaving file untouched", slog.String("path", path))
		return nil
	}
	if err := cities.Save(g.fs, path); err != nil {
		return fmt.Errorf("saving cities of %s: %w", country.Name, err)
	}
	logger.Info("saved cities", slog.String("path", path), slog.Int("total", cities.Len()))
	return nil
}

// resolveCountry resolves a name or ISO code against the reference country list.
func (g *Gazetteer) resolveCountry(ctx context.Context, token string) (Country, error) {
	countries, err := g.ref.Countries(ctx)
	if err != nil {
		return Country{}, fmt.Errorf("loading country list: %w", err)
	}
	idx := NewCountryIndex(countries)
	g.logger.Debug("country index built", slog.Int("countries", idx.Len()))
	return idx.Resolve(token)
}

// updateCountry adds the country to the persisted set, saving only when new.
func (g *Gazetteer) updateCountry(country Country) error {
	path := g.docs.CountriesPath()
	countries, err := LoadCountries(g.fs, path)
	if errors.Is(err, ErrNotFound) {
		countries = NewCountries()
	} else if err != nil {
		return fmt.Errorf("loading countries: %w", err)
	}

	name := country.Canonical()
	if !countries.Add(name) {
		g.report.CountryExists(name)
		return nil
	}
	if err := countries.Save(g.fs, path); err != nil {
		return fmt.Errorf("saving countries: %w", err)
	}
	g.report.CountryAdded(name)
	return nil
}

// logRegions logs the admin1 region of each matched city when the reference
// can name regions. Region data is optional; failures are only logged.
func (g *Gazetteer) logRegions(ctx context.Context, logger *slog.Logger, matches *CityMatches) {
	rr, ok := g.ref.(RegionReference)
	if !ok {
		return
	}
	regions, err := rr.Regions(ctx)
	if err != nil {
		logger.Warn("region names unavailable", slog.Any("error", err))
		return
	}
	for _, m := range matches.All() {
		if !m.Found() {
			continue
		}
		logger.Info("matched city",
			slog.String("requested", m.Requested),
			slog.String("city", m.Place.Name),
			slog.Int64("geoname_id", m.Place.GeonameID),
			slog.String("region", regions.Name(m.Place.CountryCode, m.Place.Admin1Code)))
	}
}

// ListCountries returns the stored country names, sorted. A gazetteer
// without a countries file is empty.
func (g *Gazetteer) ListCountries() ([]string, error) {
	countries, err := LoadCountries(g.fs, g.docs.CountriesPath())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return countries.Names(), nil
}

// StoredCity is a city as persisted in the gazetteer.
type StoredCity struct {
	Name        string
	Coordinates Coordinates
}

// ListCities returns the stored cities of a country, sorted by name.
// countryToken may be a stored canonical name in any case; otherwise it is
// resolved against the reference like AddCities does.
func (g *Gazetteer) ListCities(ctx context.Context, countryToken string) (string, []StoredCity, error) {
	canonical, err := g.storedCountry(ctx, countryToken)
	if err != nil {
		return "", nil, err
	}
	cities, err := LoadCities(g.fs, g.docs.CitiesPath(canonical))
	if errors.Is(err, ErrNotFound) {
		return canonical, nil, nil
	} else if err != nil {
		return "", nil, err
	}
	out := make([]StoredCity, 0, cities.Len())
	for _, name := range cities.Names() {
		coords, _ := cities.Get(name)
		out = append(out, StoredCity{Name: name, Coordinates: coords})
	}
	return canonical, out, nil
}

func (g *Gazetteer) storedCountry(ctx context.Context, token string) (string, error) {
	canonical := canonicalName(token)
	stored, err := LoadCountries(g.fs, g.docs.CountriesPath())
	if errors.Is(err, ErrNotFound) {
		stored = NewCountries()
	} else if err != nil {
		return "", err
	}
	if stored.Contains(canonical) {
		return canonical, nil
	}
	// Names() is sorted, so when two stored names differ only by case the
	// first in sorted order wins.
	want := toLower(canonical)
	for _, name := range stored.Names() {
		if toLower(name) == want {
			return name, nil
		}
	}
	country, err := g.resolveCountry(ctx, token)
	if err != nil {
		return "", err
	}
	return country.Canonical(), nil
}

// Import runs AddCities for every manifest entry in order, stopping at the
// first failure.
func (g *Gazetteer) Import(ctx context.Context, m Manifest) error {
	for i, e := range m.Countries {
		if err := g.AddCities(ctx, e.Country, e.Cities); err != nil {
			return fmt.Errorf("manifest entry %d (%s): %w", i+1, e.Country, err)
		}
	}
	return nil
}
