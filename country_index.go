package waymarks

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Country is a resolved country: lowercase ISO alpha-2 code and the name
// as registered in the reference dataset.
type Country struct {
	Code string
	Name string
}

// Canonical is the storage form of the country name: spaces become underscores.
func (c Country) Canonical() string {
	return canonicalName(c.Name)
}

func canonicalName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// CountryIndex resolves a user token that is either a country name or an
// ISO code. Both directions are keyed by the lowercased form.
type CountryIndex struct {
	nameToISO map[string]string // lowercase name → lowercase code
	isoToName map[string]string // lowercase code → registered name
}

// NewCountryIndex builds an index over the full countryInfo list.
func NewCountryIndex(countries []CountryInfo) *CountryIndex {
	idx := &CountryIndex{
		nameToISO: make(map[string]string, len(countries)),
		isoToName: make(map[string]string, len(countries)),
	}
	for _, c := range countries {
		idx.Add(c.Country, c.ISO)
	}
	return idx
}

// Add registers both lookup directions for a country.
func (idx *CountryIndex) Add(name, iso string) {
	iso = toLower(iso)
	idx.nameToISO[toLower(name)] = iso
	idx.isoToName[iso] = name
}

// Len returns the number of registered codes.
func (idx *CountryIndex) Len() int {
	return len(idx.isoToName)
}

// Resolve maps a name or ISO code, in any case, to its Country.
// Codes are tried first, so "DE" never resolves as a name.
func (idx *CountryIndex) Resolve(token string) (Country, error) {
	key := toLower(token)
	if name, ok := idx.isoToName[key]; ok {
		return Country{Code: key, Name: name}, nil
	}
	if iso, ok := idx.nameToISO[key]; ok {
		return Country{Code: iso, Name: idx.isoToName[iso]}, nil
	}
	return Country{}, &UnresolvedCountryError{Token: token, Suggestion: idx.suggest(key)}
}

// suggest returns the registered name closest to key, for error messages only.
func (idx *CountryIndex) suggest(key string) string {
	if len(key) <= 2 {
		return ""
	}
	names := make([]string, 0, len(idx.nameToISO))
	for name := range idx.nameToISO {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestDist := "", maxSuggestionDistance+1
	for _, name := range names {
		if d := levenshtein.ComputeDistance(key, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return ""
	}
	return idx.isoToName[idx.nameToISO[best]]
}

// toLower converts a string to lowercase using the standard library.
//
// WHY USE STANDARD LIBRARY: Geonames names are UTF-8 with international
// characters ("Zürich", "São Paulo"); strings.ToLower is Unicode-aware.
func toLower(s string) string {
	return strings.ToLower(s)
}

// toUpper converts a string to uppercase using the standard library.
func toUpper(s string) string {
	return strings.ToUpper(s)
}
