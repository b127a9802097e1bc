// Package review holds customer reviews: validation of submissions, star
// rendering and the ordering rules for listings.
package review

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// MinRating and MaxRating bound a star rating.
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrRatingRequired is returned when no star was selected.
	ErrRatingRequired = eris.New("Please select a rating")
	// ErrInvalidRating is returned for a rating outside 1..5.
	ErrInvalidRating = eris.New("review: rating must be between 1 and 5")
	// ErrNameRequired is returned when the customer name is blank.
	ErrNameRequired = eris.New("review: customer name is required")
)

// Submission is a review as entered by a customer.
type Submission struct {
	CustomerName string `json:"customer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// Validate checks the submission and returns it normalised: trimmed name,
// and a nil comment when blank.
func (s Submission) Validate() (Normalized, error) {
	name := strings.TrimSpace(s.CustomerName)
	switch {
	case s.Rating == 0:
		return Normalized{}, ErrRatingRequired
	case s.Rating < MinRating || s.Rating > MaxRating:
		return Normalized{}, eris.Wrapf(ErrInvalidRating, "got %d", s.Rating)
	case name == "":
		return Normalized{}, ErrNameRequired
	}
	n := Normalized{CustomerName: name, Rating: s.Rating}
	if c := strings.TrimSpace(s.Comment); c != "" {
		n.Comment = &c
	}
	return n, nil
}

// Normalized is a validated submission ready to insert.
type Normalized struct {
	CustomerName string
	Rating       int
	Comment      *string
}

// Review is a stored review.
type Review struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stars renders the rating as filled and empty stars, e.g. "★★★☆☆".
func (r Review) Stars() string {
	return Stars(r.Rating)
}

// Stars renders rating filled stars padded to five with empty ones.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}

// Filter selects and orders a listing. Newest orders purely by recency (home
// page); otherwise highest rating first, newest within a rating.
type Filter struct {
	Rating int
	Limit  int
	Newest bool
}

// Validate rejects ratings outside 0..5 (0 means any) and negative limits.
func (f Filter) Validate() error {
	if f.Rating < 0 || f.Rating > MaxRating {
		return eris.Wrapf(ErrInvalidRating, "filter %d", f.Rating)
	}
	if f.Limit < 0 {
		return eris.Errorf("review: negative limit %d", f.Limit)
	}
	return nil
}

// Apply filters, sorts and limits reviews in memory. The input is not modified.
func (f Filter) Apply(reviews []Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if f.Rating != 0 && r.Rating != f.Rating {
			continue
		}
		out = append(out, r)
	}
	Sort(out, f.Newest)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Sort orders reviews in place.
func Sort(reviews []Review, newest bool) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if !newest && a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Average is the mean rating, 0 for no reviews.
func Average(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
