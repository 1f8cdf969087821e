package waymarks

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// AdminDivision represents a first-level administrative division (state, province, etc.)
type AdminDivision struct {
	Country string // ISO country code (e.g., "DE")
	Code    string // Admin1 code (e.g., "16", "TX")
	Name    string // Full name (e.g., "Berlin", "Texas")
}

// AdminDivisions maps country code -> division code -> AdminDivision.
type AdminDivisions map[string]map[string]AdminDivision

// ReadAdminDivisions loads admin1CodesASCII.txt.
// Format: CC.CODE<tab>Name<tab>AsciiName<tab>GeonameId
func ReadAdminDivisions(fsys afero.Fs, path string) (AdminDivisions, error) {
	rows, err := ReadTSV(fsys, path, parseAdminDivision)
	if err != nil {
		return nil, err
	}
	divisions := make(AdminDivisions)
	for _, d := range rows {
		if divisions[d.Country] == nil {
			divisions[d.Country] = make(map[string]AdminDivision)
		}
		divisions[d.Country][d.Code] = d
	}
	return divisions, nil
}

func parseAdminDivision(fields []string) (AdminDivision, error) {
	if len(fields) < 2 {
		return AdminDivision{}, fmt.Errorf("expected at least 2 fields, got %d", len(fields))
	}
	parts := strings.SplitN(fields[0], ".", 2)
	if len(parts) != 2 {
		return AdminDivision{}, fmt.Errorf("malformed division key %q", fields[0])
	}
	return AdminDivision{
		Country: toUpper(parts[0]),
		Code:    toUpper(parts[1]),
		Name:    fields[1],
	}, nil
}

// Name returns the division name for a country and admin1 code, or "" when unknown.
func (d AdminDivisions) Name(countryCode, divisionCode string) string {
	if divisions, ok := d[toUpper(countryCode)]; ok {
		if div, exists := divisions[toUpper(divisionCode)]; exists {
			return div.Name
		}
	}
	return ""
}
