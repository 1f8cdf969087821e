package waymarks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Reference supplies reference records to the gazetteer. GeoNames is the
// real implementation; tests pass fixed in-memory records.
type Reference interface {
	// Countries returns the full country list.
	Countries(ctx context.Context) ([]CountryInfo, error)
	// Places returns place records covering the given country code. Records
	// of other countries may be included; callers filter.
	Places(ctx context.Context, code string) ([]Geoname, error)
}

// RegionReference is implemented by references that can name admin1 regions.
type RegionReference interface {
	Regions(ctx context.Context) (AdminDivisions, error)
}

// GeoNames reads the Geonames dump, downloading and extracting files on
// first use. Decoded files are cached for the life of the value, so a batch
// of requests decodes each file once.
type GeoNames struct {
	cfg       GeoNamesConfig
	fs        afero.Fs
	fetcher   *Fetcher
	extractor *Extractor
	decoded   *cache.Cache
	logger    *slog.Logger
}

var (
	_ Reference       = (*GeoNames)(nil)
	_ RegionReference = (*GeoNames)(nil)
)

// NewGeoNames returns a GeoNames reference over fsys.
func NewGeoNames(cfg GeoNamesConfig, fsys afero.Fs, client *http.Client, logger *slog.Logger) *GeoNames {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeoNames{
		cfg:       cfg,
		fs:        fsys,
		fetcher:   NewFetcher(fsys, client, logger),
		extractor: NewExtractor(fsys, logger),
		decoded:   cache.New(cache.NoExpiration, 0),
		logger:    logger,
	}
}

// Countries implements Reference.
func (g *GeoNames) Countries(ctx context.Context) ([]CountryInfo, error) {
	return loadSource(ctx, g, g.cfg.CountryInfoSource(), ReadCountryInfo)
}

// Places implements Reference.
func (g *GeoNames) Places(ctx context.Context, code string) ([]Geoname, error) {
	return loadSource(ctx, g, g.cfg.CitiesSource(code), ReadGeonames)
}

// Regions implements RegionReference.
func (g *GeoNames) Regions(ctx context.Context) (AdminDivisions, error) {
	src, ok := g.cfg.Admin1Source()
	if !ok {
		return AdminDivisions{}, nil
	}
	return loadSource(ctx, g, src, ReadAdminDivisions)
}

// Prefetch downloads and extracts every configured source concurrently.
// A per-country cities file is fetched only for the given codes.
func (g *GeoNames) Prefetch(ctx context.Context, codes ...string) error {
	sources := []DataSource{g.cfg.CountryInfoSource()}
	if g.cfg.PerCountry() {
		for _, code := range codes {
			sources = append(sources, g.cfg.CitiesSource(code))
		}
	} else {
		sources = append(sources, g.cfg.CitiesSource(""))
	}
	if src, ok := g.cfg.Admin1Source(); ok {
		sources = append(sources, src)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		eg.Go(func() error {
			return g.ensure(ctx, src)
		})
	}
	return eg.Wait()
}

// ensure makes the source's text file available locally.
func (g *GeoNames) ensure(ctx context.Context, src DataSource) error {
	if err := g.fetcher.Ensure(ctx, src.URL, src.Path); err != nil {
		return fmt.Errorf("downloading %s: %w", src.ID, err)
	}
	if src.Archive() {
		if err := g.extractor.Extract(src.Path, filepath.Dir(src.Path)); err != nil {
			return fmt.Errorf("extracting %s: %w", src.ID, err)
		}
	}
	return nil
}

// loadSource ensures src and decodes its text file, memoized by path.
func loadSource[T any](ctx context.Context, g *GeoNames, src DataSource, read func(afero.Fs, string) (T, error)) (T, error) {
	var zero T
	path := src.TextPath()
	if v, ok := g.decoded.Get(path); ok {
		return v.(T), nil
	}
	if err := g.ensure(ctx, src); err != nil {
		return zero, err
	}
	v, err := read(g.fs, path)
	if err != nil {
		return zero, fmt.Errorf("%w: loading %s: %w", ErrAcquisition, src.ID, err)
	}
	g.decoded.Set(path, v, cache.NoExpiration)
	g.logger.Debug("decoded reference file", slog.String("path", path), slog.String("source", string(src.ID)))
	return v, nil
}
