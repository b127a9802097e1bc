package branch

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/geo"
)

// pointSpan is the side length (degrees) of the rectangle stored per branch.
const pointSpan = 1e-9

type indexedBranch struct {
	idx  int
	rect rtreego.Rect
}

func (b *indexedBranch) Bounds() rtreego.Rect {
	return b.rect
}

func newIndexedBranch(idx int, c geo.Coordinate) (*indexedBranch, error) {
	rect, err := rtreego.NewRect(rtreego.Point{c.Lng, c.Lat}, []float64{pointSpan, pointSpan})
	if err != nil {
		return nil, eris.Wrap(err, "branch: build rect")
	}
	return &indexedBranch{idx: idx, rect: rect}, nil
}

// Within returns the branches whose great-circle distance from point is at
// most radiusKm, in registry order. The R-tree narrows the candidates to a
// bounding box; the haversine check decides.
func (r *Registry) Within(point geo.Coordinate, radiusKm float64) ([]Branch, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil, eris.Errorf("branch: invalid radius %v", radiusKm)
	}

	box, err := searchRect(point, radiusKm)
	if err != nil {
		return nil, err
	}

	var idxs []int
	for _, s := range r.tree.SearchIntersect(box) {
		item := s.(*indexedBranch)
		if geo.DistanceKm(point, r.branches[item.idx].Location) <= radiusKm {
			idxs = append(idxs, item.idx)
		}
	}
	sort.Ints(idxs)

	out := make([]Branch, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.branches[i])
	}
	return out, nil
}

// searchRect builds a lng/lat rectangle enclosing the search circle. Circles
// that cross the antimeridian or reach a pole search the full longitude band.
func searchRect(point geo.Coordinate, radiusKm float64) (rtreego.Rect, error) {
	dLat, dLng := geo.DegreesForKm(point, radiusKm)
	// pad for floating point at the circle edge
	dLat = dLat*1.01 + pointSpan
	dLng = dLng*1.01 + pointSpan

	minLat := math.Max(point.Lat-dLat, -90)
	maxLat := math.Min(point.Lat+dLat, 90)
	minLng, maxLng := point.Lng-dLng, point.Lng+dLng
	if minLng < -180 || maxLng > 180 {
		minLng, maxLng = -180, 180
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minLng, minLat},
		[]float64{maxLng - minLng + pointSpan, maxLat - minLat + pointSpan},
	)
	if err != nil {
		return rtreego.Rect{}, eris.Wrap(err, "branch: build search rect")
	}
	return rect, nil
}
