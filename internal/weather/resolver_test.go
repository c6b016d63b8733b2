package weather

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

// recordingGeocoder captures queries and returns a canned result or error.
type recordingGeocoder struct {
	queries []string
	result  *GeoResult
	err     error
}

func (g *recordingGeocoder) Geocode(_ context.Context, query string) (*GeoResult, error) {
	g.queries = append(g.queries, query)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newTestResolver(g Geocoder) *Resolver {
	return NewResolver(g, "ঢাকা", 23.8103, 90.4125)
}

func TestResolve_KnownDistrictSkipsGeocoding(t *testing.T) {
	g := &recordingGeocoder{err: eris.New("must not be called")}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "ঢাকা", "")

	assert.Empty(t, g.queries, "table hit must not reach the geocoder")
	assert.Equal(t, 23.8103, loc.Lat)
	assert.Equal(t, 90.4125, loc.Lon)
	assert.Equal(t, "ঢাকা", loc.Name)
}

func TestResolve_UnknownDistrictGeocodes(t *testing.T) {
	g := &recordingGeocoder{result: &GeoResult{Name: "সাভার", Lat: 23.85, Lon: 90.25}}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "সাভার", "")

	assert.Equal(t, []string{"সাভার,BD"}, g.queries)
	assert.Equal(t, "সাভার", loc.Name)
	assert.Equal(t, 23.85, loc.Lat)
}

func TestResolve_GeocodeFailureFallsBackToCapital(t *testing.T) {
	g := &recordingGeocoder{err: eris.New("provider down")}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "nowhere", "")

	assert.Equal(t, "ঢাকা", loc.Name)
	assert.Equal(t, 23.8103, loc.Lat)
	assert.Equal(t, 90.4125, loc.Lon)
}

func TestResolve_UpazilaOverridesDistrictCentroid(t *testing.T) {
	g := &recordingGeocoder{result: &GeoResult{Name: "পবা", Lat: 24.45, Lon: 88.55}}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "রাজশাহী", "পবা")

	assert.Equal(t, []string{"পবা,রাজশাহী,BD"}, g.queries)
	assert.Equal(t, "পবা", loc.Name)
	assert.Equal(t, 24.45, loc.Lat)
}

func TestResolve_UpazilaGeocodeFailureKeepsDistrict(t *testing.T) {
	g := &recordingGeocoder{err: eris.New("no results")}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "রাজশাহী", "অজানা")

	assert.Equal(t, "রাজশাহী", loc.Name)
	assert.Equal(t, 24.3745, loc.Lat)
}

func TestResolve_EmptyInputUsesDefault(t *testing.T) {
	g := &recordingGeocoder{err: eris.New("must not be called")}
	r := newTestResolver(g)

	loc := r.Resolve(context.Background(), "", "")

	assert.Empty(t, g.queries)
	assert.Equal(t, "ঢাকা", loc.Name)
}

func TestValidFreeText(t *testing.T) {
	assert.True(t, ValidFreeText(""))
	assert.True(t, ValidFreeText("ঢাকা"))
	assert.True(t, ValidFreeText("Cox's Bazar"))
	assert.True(t, ValidFreeText("রাজশাহী, পবা"))
	assert.False(t, ValidFreeText("<script>"))
	assert.False(t, ValidFreeText("ঢাকা;DROP TABLE"))

	long := make([]byte, 0, 101)
	for range 101 {
		long = append(long, 'a')
	}
	assert.False(t, ValidFreeText(string(long)))
}
