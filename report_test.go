package waymarks

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	berlin := Coordinates{Lat: 52.52, Lon: 13.405}

	r.CountryAdded("Germany")
	r.CountryExists("Germany")
	r.CityAdded("Berlin", berlin)
	r.CityExists("Berlin", "Germany")
	r.CityNotFound("Nope", "Germany")
	r.Country("Germany")
	r.City("Berlin", berlin)
	r.Finished(1500 * time.Millisecond)

	assert.Equal(t,
		"Added country: Germany\n"+
			"Country 'Germany' already exists\n"+
			"Added city: Berlin (52.52, 13.405)\n"+
			"City 'Berlin' already exists in country 'Germany'\n"+
			"City 'Nope' not found in country 'Germany'\n"+
			"Germany\n"+
			"Berlin\t52.52\t13.405\t"+berlin.Geohash()+"\n"+
			"Command finished in 1.50s\n",
		buf.String())
}
