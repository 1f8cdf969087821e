package waymarks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCities(t *testing.T) {
	m := MatchCities("de", []string{"Berlin", "Nope", "hamburg"}, placesFixture)
	require.Equal(t, 3, m.Len())

	all := m.All()
	assert.Equal(t, "Berlin", all[0].Requested)
	require.True(t, all[0].Found())
	assert.Equal(t, int64(2950159), all[0].Place.GeonameID)

	assert.Equal(t, "Nope", all[1].Requested)
	assert.False(t, all[1].Found())

	assert.Equal(t, "hamburg", all[2].Requested)
	require.True(t, all[2].Found())
	assert.Equal(t, "Hamburg", all[2].Place.Name)
}

func TestMatchCities_FiltersByCountry(t *testing.T) {
	m := MatchCities("DE", []string{"Paris"}, placesFixture)
	match, ok := m.lookup("Paris")
	require.True(t, ok)
	assert.False(t, match.Found(), "Paris is in FR, not DE")

	m = MatchCities("fr", []string{"Paris"}, placesFixture)
	match, ok = m.lookup("paris")
	require.True(t, ok)
	assert.True(t, match.Found())
}

func TestMatchCities_ASCIIName(t *testing.T) {
	m := MatchCities("de", []string{"muenchen"}, placesFixture)
	match, ok := m.lookup("Muenchen")
	require.True(t, ok)
	require.True(t, match.Found())
	assert.Equal(t, "München", match.Place.Name)
}

func TestMatchCities_DuplicateRequestsShareSlot(t *testing.T) {
	m := MatchCities("fr", []string{"Paris", "paris", " PARIS "}, placesFixture)
	assert.Equal(t, 1, m.Len())

	a, ok := m.lookup("Paris")
	require.True(t, ok)
	b, ok := m.lookup("paris")
	require.True(t, ok)
	assert.Same(t, a.Place, b.Place)
	assert.Equal(t, "Paris", a.Requested, "first spelling is kept")

	m = MatchCities("fr", []string{"Nope", "NOPE"}, placesFixture)
	assert.Equal(t, 1, m.Len())
	miss, ok := m.lookup("nope")
	require.True(t, ok)
	assert.False(t, miss.Found())
}

func TestMatchCities_FirstRecordWins(t *testing.T) {
	places := []Geoname{
		{GeonameID: 1, Name: "Frankfurt", Latitude: 50.11, Longitude: 8.68, CountryCode: "DE"},
		{GeonameID: 2, Name: "Frankfurt", Latitude: 52.34, Longitude: 14.55, CountryCode: "DE"},
	}
	m := MatchCities("de", []string{"Frankfurt"}, places)
	match, _ := m.lookup("Frankfurt")
	require.True(t, match.Found())
	assert.Equal(t, int64(1), match.Place.GeonameID)
}

// An ASCII-name match on an earlier record beats a primary-name match on a
// later one: the scan binds whatever it reaches first.
func TestMatchCities_ASCIIBeforePrimaryTieBreak(t *testing.T) {
	places := []Geoname{
		{GeonameID: 1, Name: "Köln", ASCIIName: "Koln", CountryCode: "DE"},
		{GeonameID: 2, Name: "Koln", ASCIIName: "Koln", CountryCode: "DE"},
	}
	m := MatchCities("de", []string{"koln"}, places)
	match, _ := m.lookup("koln")
	require.True(t, match.Found())
	assert.Equal(t, int64(1), match.Place.GeonameID)
}

// One record fills one slot, even if its name and ASCII name are both requested.
func TestMatchCities_RecordFillsOneSlot(t *testing.T) {
	places := []Geoname{
		{GeonameID: 1, Name: "München", ASCIIName: "Muenchen", CountryCode: "DE"},
	}
	m := MatchCities("de", []string{"München", "Muenchen"}, places)
	require.Equal(t, 2, m.Len())

	primary, _ := m.lookup("München")
	ascii, _ := m.lookup("Muenchen")
	assert.True(t, primary.Found())
	assert.False(t, ascii.Found())
}

func TestMatchCities_StopsOnceAllBound(t *testing.T) {
	places := []Geoname{
		{GeonameID: 1, Name: "Berlin", CountryCode: "DE"},
		{GeonameID: 2, Name: "Berlin", CountryCode: "DE"},
	}
	m := MatchCities("de", []string{"Berlin"}, places)
	match, _ := m.lookup("Berlin")
	assert.Same(t, &places[0], match.Place)
}

func TestMatchCities_BlankNamesNeverMatch(t *testing.T) {
	places := append([]Geoname{{GeonameID: 1, Name: "", CountryCode: "DE"}}, placesFixture...)
	m := MatchCities("de", []string{"", "  ", "Berlin"}, places)
	require.Equal(t, 2, m.Len())

	blank, ok := m.lookup("")
	require.True(t, ok)
	assert.Equal(t, "", blank.Requested)
	assert.False(t, blank.Found())

	berlin, _ := m.lookup("Berlin")
	assert.True(t, berlin.Found())
}

func TestMatchCities_NoRequests(t *testing.T) {
	m := MatchCities("de", nil, placesFixture)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.All())
}
