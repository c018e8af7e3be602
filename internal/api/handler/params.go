package handler

import (
	"strconv"
	"strings"

	"github.com/ecosentry/ecosentry/pkg/geo"
)

// coordsParam is the chi URL parameter holding "{lat},{lon}".
const coordsParam = "coords"

// parseCoords extracts a "{lat},{lon}" path segment into a point.
// The second return value carries field-level validation errors.
func parseCoords(param string) (geo.Point, map[string]string) {
	parts := strings.SplitN(param, ",", 2)
	if len(parts) != 2 {
		return geo.Point{}, map[string]string{
			"coords": "expected {lat},{lon}",
		}
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

	errs := map[string]string{}
	if latErr != nil {
		errs["lat"] = "must be a number"
	}
	if lonErr != nil {
		errs["lon"] = "must be a number"
	}
	if len(errs) > 0 {
		return geo.Point{}, errs
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		if lat < -90 || lat > 90 {
			errs["lat"] = "must be between -90 and 90"
		}
		if lon < -180 || lon > 180 {
			errs["lon"] = "must be between -180 and 180"
		}
		return geo.Point{}, errs
	}

	return p, nil
}
