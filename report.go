package waymarks

import (
	"fmt"
	"io"
	"time"

	"github.com/labstack/gommon/color"
)

// Reporter writes one human-readable line per outcome.
// Colors are used only when the output is a terminal.
type Reporter struct {
	w     io.Writer
	color *color.Color
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	c := color.New()
	c.SetOutput(w) // disables color unless w is a terminal
	return &Reporter{w: w, color: c}
}

func (r *Reporter) println(s string) {
	fmt.Fprintln(r.w, s)
}

// CountryAdded reports a newly stored country.
func (r *Reporter) CountryAdded(name string) {
	r.println(r.color.Green("Added country: " + name))
}

// CountryExists reports a country that was already stored.
func (r *Reporter) CountryExists(name string) {
	r.println(r.color.Yellow(fmt.Sprintf("Country '%s' already exists", name)))
}

// CityAdded reports a newly stored city.
func (r *Reporter) CityAdded(name string, c Coordinates) {
	r.println(r.color.Green(fmt.Sprintf("Added city: %s (%v, %v)", name, c.Lat, c.Lon)))
}

// CityExists reports a city that was already stored for the country.
func (r *Reporter) CityExists(name, country string) {
	r.println(r.color.Yellow(fmt.Sprintf("City '%s' already exists in country '%s'", name, country)))
}

// CityNotFound reports a requested city with no reference record.
func (r *Reporter) CityNotFound(name, country string) {
	r.println(r.color.Red(fmt.Sprintf("City '%s' not found in country '%s'", name, country)))
}

// Country prints a stored country in listings.
func (r *Reporter) Country(name string) {
	r.println(name)
}

// City prints a stored city in listings.
func (r *Reporter) City(name string, c Coordinates) {
	r.println(fmt.Sprintf("%s\t%v\t%v\t%s", name, c.Lat, c.Lon, c.Geohash()))
}

// Finished reports the command duration.
func (r *Reporter) Finished(d time.Duration) {
	r.println(r.color.Blue(fmt.Sprintf("Command finished in %.2fs", d.Seconds())))
}
