package waymarks

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// geonameRow builds a 19-column cities dump row.
func geonameRow(id int64, name, ascii string, lat, lon float64, cc, admin1 string) string {
	return strings.Join([]string{
		fmt.Sprint(id), name, ascii, "", fmt.Sprint(lat), fmt.Sprint(lon), "P", "PPL", cc, "",
		admin1, "", "", "", "1000", "", "34", "Europe/Berlin", "2024-11-04",
	}, "\t")
}

// countryRow builds a 19-column countryInfo.txt row.
func countryRow(iso, iso3, numeric, name string) string {
	return strings.Join([]string{
		iso, iso3, numeric, iso, name, "Capital", "1000", "100", "EU", "." + strings.ToLower(iso),
		"EUR", "Euro", "1", "", "", "xx", "1", "", "",
	}, "\t")
}

func tsv(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

// zipOf returns a zip archive holding the given name → content entries.
func zipOf(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

var countryInfoFixture = tsv(
	"# GeoNames countryInfo",
	"#ISO\tISO3\tISO-Numeric\tfips\tCountry\tCapital\tArea(in sq km)\tPopulation\tContinent",
	countryRow("AD", "AND", "020", "Andorra"),
	countryRow("AE", "ARE", "784", "United Arab Emirates"),
	countryRow("DE", "DEU", "276", "Germany"),
	countryRow("FR", "FRA", "250", "France"),
)

// placesFixture is a small reference set spanning two countries.
var placesFixture = []Geoname{
	{GeonameID: 2950159, Name: "Berlin", ASCIIName: "Berlin", Latitude: 52.52, Longitude: 13.405, CountryCode: "DE", Admin1Code: "16"},
	{GeonameID: 2867714, Name: "München", ASCIIName: "Muenchen", Latitude: 48.13743, Longitude: 11.57549, CountryCode: "DE", Admin1Code: "02"},
	{GeonameID: 2988507, Name: "Paris", ASCIIName: "Paris", Latitude: 48.85341, Longitude: 2.3488, CountryCode: "FR", Admin1Code: "11"},
	{GeonameID: 2911298, Name: "Hamburg", ASCIIName: "Hamburg", Latitude: 53.55073, Longitude: 9.99302, CountryCode: "DE", Admin1Code: "04"},
}

var countriesFixture = []CountryInfo{
	{ISO: "AD", ISO3: "AND", Country: "Andorra"},
	{ISO: "AE", ISO3: "ARE", Country: "United Arab Emirates"},
	{ISO: "DE", ISO3: "DEU", Country: "Germany"},
	{ISO: "FR", ISO3: "FRA", Country: "France"},
}
