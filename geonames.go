package waymarks

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/s2"
	"github.com/spf13/afero"
)

// DataSourceID identifies a data source type.
type DataSourceID string

const (
	DataSourceGeonamesCities  DataSourceID = "geonamesCities"
	DataSourceGeonamesCountry DataSourceID = "geonamesCountryInfo"
	DataSourceGeonamesAdmin1  DataSourceID = "geonamesAdmin1Codes"
)

// DataSource defines a remote reference file and where it lives locally.
type DataSource struct {
	URL  string       // Download URL
	Path string       // Local file path
	ID   DataSourceID // Identifier for processing logic
}

// Archive reports whether the source is a zip that must be extracted before reading.
func (d DataSource) Archive() bool {
	return strings.EqualFold(filepath.Ext(d.Path), ".zip")
}

// TextPath returns the path of the tab-separated file the source yields.
// For archives this is the extracted file next to the zip.
func (d DataSource) TextPath() string {
	if d.Archive() {
		return strings.TrimSuffix(d.Path, filepath.Ext(d.Path)) + ".txt"
	}
	return d.Path
}

// CountryInfo contains metadata about a country from Geonames countryInfo.txt.
type CountryInfo struct {
	ISO                string
	ISO3               string
	ISONumeric         string
	Fips               string
	Country            string
	Capital            string
	Area               float64
	Population         int64
	Continent          string
	Tld                string
	CurrencyCode       string
	CurrencyName       string
	Phone              string
	PostalCodeFormat   string
	PostalCodeRegex    string
	Languages          string
	GeonameID          int64
	Neighbours         string
	EquivalentFipsCode string
}

// FeatureClass is the one-letter Geonames feature class.
type FeatureClass string

const (
	FeatureClassAdmin     FeatureClass = "A" // country, state, region,...
	FeatureClassHydro     FeatureClass = "H" // stream, lake, ...
	FeatureClassArea      FeatureClass = "L" // parks, area, ...
	FeatureClassPopulated FeatureClass = "P" // city, village,...
	FeatureClassRoad      FeatureClass = "R" // road, railroad
	FeatureClassSpot      FeatureClass = "S" // spot, building, farm
	FeatureClassTerrain   FeatureClass = "T" // mountain, hill, rock,...
	FeatureClassUndersea  FeatureClass = "U" // undersea
	FeatureClassVegetat   FeatureClass = "V" // forest, heath,...
)

func (f FeatureClass) valid() bool {
	switch f {
	case FeatureClassAdmin, FeatureClassHydro, FeatureClassArea, FeatureClassPopulated,
		FeatureClassRoad, FeatureClassSpot, FeatureClassTerrain, FeatureClassUndersea, FeatureClassVegetat:
		return true
	}
	return false
}

// Geoname is one row of a Geonames cities dump.
type Geoname struct {
	GeonameID        int64
	Name             string
	ASCIIName        string
	AlternateNames   string // comma-separated
	Latitude         float64
	Longitude        float64
	FeatureClass     FeatureClass
	FeatureCode      string
	CountryCode      string
	CC2              string
	Admin1Code       string
	Admin2Code       string
	Admin3Code       string
	Admin4Code       string
	Population       int64
	Elevation        *int // absent for most rows
	DEM              int
	Timezone         string
	ModificationDate time.Time
}

// Coordinates returns the record's position.
func (g Geoname) Coordinates() Coordinates {
	return Coordinates{Lat: g.Latitude, Lon: g.Longitude}
}

const (
	geonameFields     = 19
	countryInfoFields = 19
	// countryInfo rows must carry at least iso, iso3, iso numeric, fips and name.
	minCountryInfoFields = 5
	modificationLayout   = "2006-01-02"
	// alternatenames can hold ~10000 characters, beyond bufio's default token size.
	maxTSVLine = 1 << 20
)

// ReadTSV reads a tab-separated Geonames file into typed records.
// Blank lines and lines starting with '#' are skipped; there is no header.
// A row that parse rejects fails the whole read with ErrDecode.
func ReadTSV[T any](fsys afero.Fs, path string, parse func(fields []string) (T, error)) ([]T, error) {
	fi, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fi.Close()

	scanner := bufio.NewScanner(fi)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTSVLine)

	var records []T
	line := 0
	for scanner.Scan() {
		line++
		t := strings.TrimSuffix(scanner.Text(), "\r")
		if len(t) == 0 || t[0] == '#' {
			continue
		}
		rec, err := parse(strings.Split(t, "\t"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrDecode, path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDecode, path, err)
	}
	return records, nil
}

// ReadCountryInfo reads a countryInfo.txt file.
func ReadCountryInfo(fsys afero.Fs, path string) ([]CountryInfo, error) {
	return ReadTSV(fsys, path, parseCountryInfo)
}

// ReadGeonames reads a cities dump (extracted from its zip).
func ReadGeonames(fsys afero.Fs, path string) ([]Geoname, error) {
	return ReadTSV(fsys, path, parseGeoname)
}

func parseCountryInfo(fields []string) (CountryInfo, error) {
	if len(fields) < minCountryInfoFields || len(fields) > countryInfoFields {
		return CountryInfo{}, fmt.Errorf("expected %d fields, got %d", countryInfoFields, len(fields))
	}
	if len(fields) < countryInfoFields {
		fields = append(fields, make([]string, countryInfoFields-len(fields))...)
	}
	if fields[0] == "" || fields[4] == "" {
		return CountryInfo{}, fmt.Errorf("missing iso code or country name")
	}

	// Auxiliary numeric columns are informational; unparseable values read as zero.
	area, _ := strconv.ParseFloat(fields[6], 64)
	pop, _ := strconv.ParseInt(fields[7], 10, 64)
	gid, _ := strconv.ParseInt(fields[16], 10, 64)

	return CountryInfo{
		ISO:                fields[0],
		ISO3:               fields[1],
		ISONumeric:         fields[2],
		Fips:               fields[3],
		Country:            fields[4],
		Capital:            fields[5],
		Area:               area,
		Population:         pop,
		Continent:          fields[8],
		Tld:                fields[9],
		CurrencyCode:       fields[10],
		CurrencyName:       fields[11],
		Phone:              fields[12],
		PostalCodeFormat:   fields[13],
		PostalCodeRegex:    fields[14],
		Languages:          fields[15],
		GeonameID:          gid,
		Neighbours:         fields[17],
		EquivalentFipsCode: fields[18],
	}, nil
}

func parseGeoname(fields []string) (Geoname, error) {
	if len(fields) != geonameFields {
		return Geoname{}, fmt.Errorf("expected %d fields, got %d", geonameFields, len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Geoname{}, fmt.Errorf("geonameid: %w", err)
	}
	lat, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Geoname{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return Geoname{}, fmt.Errorf("longitude: %w", err)
	}
	// Reject rows that would land outside the globe instead of storing nonsense.
	if !s2.LatLngFromDegrees(lat, lng).IsValid() {
		return Geoname{}, fmt.Errorf("coordinates out of range: %v, %v", lat, lng)
	}

	fc := FeatureClass(fields[6])
	if fc != "" && !fc.valid() {
		return Geoname{}, fmt.Errorf("unknown feature class %q", fields[6])
	}

	var pop int64
	if fields[14] != "" {
		if pop, err = strconv.ParseInt(fields[14], 10, 64); err != nil {
			return Geoname{}, fmt.Errorf("population: %w", err)
		}
	}
	var elevation *int
	if fields[15] != "" {
		e, err := strconv.Atoi(fields[15])
		if err != nil {
			return Geoname{}, fmt.Errorf("elevation: %w", err)
		}
		elevation = &e
	}
	var dem int
	if fields[16] != "" {
		if dem, err = strconv.Atoi(fields[16]); err != nil {
			return Geoname{}, fmt.Errorf("dem: %w", err)
		}
	}
	modified, err := time.Parse(modificationLayout, fields[18])
	if err != nil {
		return Geoname{}, fmt.Errorf("modification date: %w", err)
	}

	return Geoname{
		GeonameID:        id,
		Name:             strings.TrimSpace(fields[1]),
		ASCIIName:        fields[2],
		AlternateNames:   fields[3],
		Latitude:         lat,
		Longitude:        lng,
		FeatureClass:     fc,
		FeatureCode:      fields[7],
		CountryCode:      fields[8],
		CC2:              fields[9],
		Admin1Code:       fields[10],
		Admin2Code:       fields[11],
		Admin3Code:       fields[12],
		Admin4Code:       fields[13],
		Population:       pop,
		Elevation:        elevation,
		DEM:              dem,
		Timezone:         fields[17],
		ModificationDate: modified,
	}, nil
}
