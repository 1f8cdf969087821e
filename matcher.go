package waymarks

import "strings"

// CityMatch is the outcome for one requested city name.
type CityMatch struct {
	Requested string   // name as first requested
	Key       string   // lowercase lookup key
	Place     *Geoname // nil when not found
}

// Found reports whether a place record was bound to the request.
func (m CityMatch) Found() bool {
	return m.Place != nil
}

// CityMatches holds one slot per distinct (case-insensitive) requested name,
// in first-request order.
type CityMatches struct {
	slots []CityMatch
	byKey map[string]int
}

// All returns the slots in request order.
func (m *CityMatches) All() []CityMatch {
	return m.slots
}

// Len returns the number of distinct requested names.
func (m *CityMatches) Len() int {
	return len(m.slots)
}

// lookup returns the slot for a requested name in any case.
func (m *CityMatches) lookup(name string) (CityMatch, bool) {
	i, ok := m.byKey[toLower(strings.TrimSpace(name))]
	if !ok {
		return CityMatch{}, false
	}
	return m.slots[i], true
}

// MatchCities binds each requested name to at most one place of the given
// country. A place matches on its lowercased name or, failing that, its
// lowercased ASCII name; each place fills at most one slot. Names are
// trimmed; a blank name keeps its slot but never matches.
//
// Places are scanned in order and the first match for a slot wins, even
// when a later place matches on its primary name and the earlier one only
// on its ASCII name. The scan stops once every slot is bound.
func MatchCities(code string, names []string, places []Geoname) *CityMatches {
	m := &CityMatches{byKey: make(map[string]int, len(names))}
	for _, n := range names {
		requested := strings.TrimSpace(n)
		key := toLower(requested)
		if _, dup := m.byKey[key]; dup {
			continue
		}
		m.byKey[key] = len(m.slots)
		m.slots = append(m.slots, CityMatch{Requested: requested, Key: key})
	}

	outstanding := len(m.slots)
	for i := range places {
		if outstanding == 0 {
			break
		}
		p := &places[i]
		if !strings.EqualFold(p.CountryCode, code) {
			continue
		}
		for _, key := range placeKeys(p) {
			slot, ok := m.byKey[key]
			if !ok || key == "" || m.slots[slot].Place != nil {
				continue
			}
			m.slots[slot].Place = p
			outstanding--
			break
		}
	}
	return m
}

// placeKeys returns the lowercase match keys of a place: its name, then its ASCII name.
func placeKeys(p *Geoname) []string {
	keys := []string{toLower(p.Name)}
	if p.ASCIIName != "" {
		if ascii := toLower(p.ASCIIName); ascii != keys[0] {
			keys = append(keys, ascii)
		}
	}
	return keys
}
