package delivery

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/geo"
)

// ErrEmptyRegistry is returned when a query needs a branch but none are registered.
var ErrEmptyRegistry = eris.New("delivery: no branches registered")

// BranchDistance is a branch annotated with its distance from a queried point.
type BranchDistance struct {
	branch.Branch
	DistanceKm      float64 `json:"distance_km"`
	InDeliveryRange bool    `json:"in_delivery_range"`
}

// Result is the outcome of an availability check.
type Result struct {
	InCityArea       bool            `json:"in_city_area"`
	InDeliveryRange  bool            `json:"in_delivery_range"`
	NearestBranch    *BranchDistance `json:"nearest_branch"`
	DistanceToCityKm float64         `json:"distance_to_city_km"`
	Reason           string          `json:"reason"`
}

// Evaluator answers delivery queries against a fixed registry and service
// area. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	registry *branch.Registry
	area     ServiceArea
}

// NewEvaluator creates an Evaluator. An empty registry is accepted; branch
// queries then fail with ErrEmptyRegistry.
func NewEvaluator(reg *branch.Registry, area ServiceArea) (*Evaluator, error) {
	if reg == nil {
		return nil, eris.New("delivery: nil branch registry")
	}
	if err := area.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{registry: reg, area: area}, nil
}

// Area returns the configured service area.
func (e *Evaluator) Area() ServiceArea { return e.area }

// Registry returns the branch registry the evaluator reads.
func (e *Evaluator) Registry() *branch.Registry { return e.registry }

// NearestBranch returns the branch closest to point. On equal distances the
// branch listed first in the registry wins.
func (e *Evaluator) NearestBranch(point geo.Coordinate) (BranchDistance, error) {
	if err := point.Validate(); err != nil {
		return BranchDistance{}, err
	}
	return e.nearest(point)
}

func (e *Evaluator) nearest(point geo.Coordinate) (BranchDistance, error) {
	branches := e.registry.List()
	if len(branches) == 0 {
		return BranchDistance{}, ErrEmptyRegistry
	}

	best := 0
	bestKm := geo.DistanceKm(point, branches[0].Location)
	for i := 1; i < len(branches); i++ {
		if d := geo.DistanceKm(point, branches[i].Location); d < bestKm {
			best, bestKm = i, d
		}
	}
	return e.annotate(branches[best], bestKm), nil
}

// AllBranchesByDistance returns every branch with its distance from point,
// sorted ascending. Equal distances keep registry order.
func (e *Evaluator) AllBranchesByDistance(point geo.Coordinate) ([]BranchDistance, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}

	branches := e.registry.List()
	out := make([]BranchDistance, len(branches))
	for i, b := range branches {
		out[i] = e.annotate(b, geo.DistanceKm(point, b.Location))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

// CheckAvailability classifies point. Points outside the city radius are
// rejected without computing any branch distance. Inside the city, delivery
// is available when the nearest branch is within the maximum delivery radius
// (inclusive).
func (e *Evaluator) CheckAvailability(point geo.Coordinate) (Result, error) {
	if err := point.Validate(); err != nil {
		return Result{}, err
	}

	toCity := geo.DistanceKm(point, e.area.Center)
	if toCity > e.area.CityRadiusKm {
		return Result{
			DistanceToCityKm: toCity,
			Reason:           e.outsideCityReason(),
		}, nil
	}

	nearest, err := e.nearest(point)
	if err != nil {
		return Result{}, err
	}

	return Result{
		InCityArea:       true,
		InDeliveryRange:  nearest.InDeliveryRange,
		NearestBranch:    &nearest,
		DistanceToCityKm: toCity,
		Reason:           e.branchReason(nearest),
	}, nil
}

func (e *Evaluator) annotate(b branch.Branch, km float64) BranchDistance {
	return BranchDistance{
		Branch:          b,
		DistanceKm:      km,
		InDeliveryRange: km <= e.area.MaxDeliveryRadiusKm,
	}
}

func (e *Evaluator) outsideCityReason() string {
	return fmt.Sprintf("Delivery is currently only available in %s area", e.area.CityName)
}

func (e *Evaluator) branchReason(nearest BranchDistance) string {
	if nearest.InDeliveryRange {
		return fmt.Sprintf("Delivery available! %s is %s km away",
			nearest.Name, FormatKm(nearest.DistanceKm))
	}
	return fmt.Sprintf("Sorry, you are %s km from %s. We deliver within %s km",
		FormatKm(nearest.DistanceKm), nearest.Name,
		strconv.FormatFloat(e.area.MaxDeliveryRadiusKm, 'f', -1, 64))
}

// FormatKm renders a distance with exactly one decimal place.
func FormatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', 1, 64)
}
