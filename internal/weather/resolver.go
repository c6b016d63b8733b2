package weather

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// freeTextPattern accepts Bengali and Latin letters, digits, and common
// punctuation, up to 100 characters. Anything else is rejected before any
// lookup or network call.
var freeTextPattern = regexp.MustCompile(`^[\p{Bengali}a-zA-Z0-9\s,.'()\-]{1,100}$`)

// ValidFreeText reports whether a district or upazila value is acceptable
// input. Empty is valid; absence is not an error.
func ValidFreeText(s string) bool {
	if s == "" {
		return true
	}
	return freeTextPattern.MatchString(CanonicalText(s))
}

// Geocoder resolves a place query to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeoResult, error)
}

// Location is a resolved coordinate pair with a display name.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"location_name"`
}

// Resolver turns free-text district/upazila input into coordinates.
type Resolver struct {
	geocoder        Geocoder
	defaultDistrict string
	defaultLat      float64
	defaultLon      float64
}

// NewResolver builds a Resolver that falls back to the given default
// location (the capital) when nothing resolves.
func NewResolver(geocoder Geocoder, defaultDistrict string, defaultLat, defaultLon float64) *Resolver {
	return &Resolver{
		geocoder:        geocoder,
		defaultDistrict: defaultDistrict,
		defaultLat:      defaultLat,
		defaultLon:      defaultLon,
	}
}

// Resolve maps district/upazila input to a Location. Resolution order:
// static district table, then geocoding "{district},BD", then an optional
// "{upazila},{district},BD" refinement that overrides on success. Geocoding
// failures are logged and swallowed; the prior coordinates stand. An exact
// table match for the district never touches the network unless an upazila
// refinement is requested.
func (r *Resolver) Resolve(ctx context.Context, district, upazila string) Location {
	district = CanonicalText(district)
	upazila = CanonicalText(upazila)

	loc := Location{Lat: r.defaultLat, Lon: r.defaultLon, Name: r.defaultDistrict}

	if district != "" {
		if c, ok := DistrictCentroid(district); ok {
			loc = Location{Lat: c.Lat, Lon: c.Lon, Name: district}
		} else if res, err := r.geocoder.Geocode(ctx, district+",BD"); err == nil {
			loc = Location{Lat: res.Lat, Lon: res.Lon, Name: res.Name}
		} else {
			zap.L().Debug("district geocode failed, keeping fallback",
				zap.String("district", district),
				zap.Error(err),
			)
		}
	}

	if upazila != "" {
		parts := []string{upazila}
		if district != "" {
			parts = append(parts, district)
		}
		query := strings.Join(parts, ",") + ",BD"
		if res, err := r.geocoder.Geocode(ctx, query); err == nil {
			loc = Location{Lat: res.Lat, Lon: res.Lon, Name: res.Name}
		} else {
			zap.L().Debug("upazila geocode failed, keeping district coordinates",
				zap.String("upazila", upazila),
				zap.Error(err),
			)
		}
	}

	return loc
}
