// Package delivery decides whether a location can be served and from which branch.
package delivery

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/geo"
)

// ServiceArea bounds where the service operates at all (a circle around the
// city center) and how far a delivery may travel from its nearest branch.
type ServiceArea struct {
	CityName            string         `json:"city_name" yaml:"city_name"`
	Center              geo.Coordinate `json:"center" yaml:"center"`
	CityRadiusKm        float64        `json:"city_radius_km" yaml:"city_radius_km"`
	MaxDeliveryRadiusKm float64        `json:"max_delivery_radius_km" yaml:"max_delivery_radius_km"`
}

// DefaultServiceArea returns the Gaborone service area.
func DefaultServiceArea() ServiceArea {
	return ServiceArea{
		CityName:            "Gaborone",
		Center:              geo.Coordinate{Lat: -24.6282, Lng: 25.9086},
		CityRadiusKm:        40,
		MaxDeliveryRadiusKm: 15,
	}
}

// Validate checks the center coordinate and that both radii are positive.
func (a ServiceArea) Validate() error {
	if err := a.Center.Validate(); err != nil {
		return eris.Wrap(err, "delivery: service area center")
	}
	if !(a.CityRadiusKm > 0) || math.IsInf(a.CityRadiusKm, 0) {
		return eris.Errorf("delivery: city radius must be positive, got %v", a.CityRadiusKm)
	}
	if !(a.MaxDeliveryRadiusKm > 0) || math.IsInf(a.MaxDeliveryRadiusKm, 0) {
		return eris.Errorf("delivery: max delivery radius must be positive, got %v", a.MaxDeliveryRadiusKm)
	}
	return nil
}
