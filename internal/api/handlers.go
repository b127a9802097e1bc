package api

import (
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/checkout"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/review"
)

func (s *Server) availability(w http.ResponseWriter, r *http.Request) {
	point, err := queryCoordinate(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	res, err := s.evaluator.CheckAvailability(point)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listBranches(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.evaluator.Registry().List())
}

func (s *Server) branchesGeoJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	writeJSONBody(w, http.StatusOK, s.evaluator.Registry().FeatureCollection())
}

type nearbyBranch struct {
	branch.Branch
	DistanceKm float64 `json:"distance_km"`
}

func (s *Server) nearbyBranches(w http.ResponseWriter, r *http.Request) {
	point, err := queryCoordinate(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	radius := s.evaluator.Area().MaxDeliveryRadiusKm
	if r.URL.Query().Get("radius_km") != "" {
		if radius, err = queryFloat(r, "radius_km"); err != nil {
			writeErr(w, err)
			return
		}
	}

	found, err := s.evaluator.Registry().Within(point, radius)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]nearbyBranch, 0, len(found))
	for _, b := range found {
		out = append(out, nearbyBranch{Branch: b, DistanceKm: geo.DistanceKm(point, b.Location)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	rating, err := queryInt(r, "rating", 0)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err == nil && limit < 0 {
		err = eris.Wrap(errBadQuery, "limit must not be negative")
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	f := review.Filter{
		Rating: rating,
		Limit:  limit,
		Newest: r.URL.Query().Get("sort") == "newest",
	}

	reviews, err := s.checkout.Reviews(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var sub review.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeErr(w, err)
		return
	}
	created, err := s.checkout.SubmitReview(r.Context(), sub)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	placed, err := s.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}
