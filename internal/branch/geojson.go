package branch

import (
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection renders the registry as GeoJSON point features.
func (r *Registry) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(r.branches)),
	}
	for _, b := range r.branches {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       b.Key,
			Geometry: b.Location.Point(),
			Properties: map[string]any{
				"key":     b.Key,
				"name":    b.Name,
				"address": b.Address,
			},
		})
	}
	return fc
}
