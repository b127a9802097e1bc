// Package checkout turns a cart into a submitted order and forwards reviews,
// checking delivery eligibility before anything reaches the backend.
package checkout

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/backend"
	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/menu"
	"github.com/sells-group/delivery-cli/internal/resilience"
	"github.com/sells-group/delivery-cli/internal/review"
)

var (
	// ErrEmptyCart is returned when ordering with nothing in the cart.
	ErrEmptyCart = eris.New("checkout: cart is empty")
	// ErrOutOfRange is returned when the delivery address cannot be served.
	ErrOutOfRange = eris.New("checkout: outside delivery range")
	// ErrUnknownBranch is returned for a branch key that does not exist.
	ErrUnknownBranch = eris.New("checkout: unknown branch")
	// ErrLocationRequired is returned for a delivery order without a location.
	ErrLocationRequired = eris.New("checkout: delivery location required")
)

// Mode is how the customer receives the order.
type Mode string

const (
	Delivery Mode = "delivery"
	Pickup   Mode = "pickup"
)

// Request is an order as placed by the customer.
type Request struct {
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Mode         Mode            `json:"mode"`
	BranchKey    string          `json:"branch_key,omitempty"`
	Location     *geo.Coordinate `json:"location,omitempty"`
	Items        []cart.Item     `json:"items"`
	// IdempotencyKey is generated when empty.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// OutOfRangeError carries the eligibility result behind ErrOutOfRange.
type OutOfRangeError struct {
	Result delivery.Result
}

func (e *OutOfRangeError) Error() string {
	return ErrOutOfRange.Error() + ": " + e.Result.Reason
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Service places orders and submits reviews.
type Service struct {
	evaluator *delivery.Evaluator
	backend   backend.Backend
	policy    resilience.Policy
	menu      *menu.Menu
}

// Option configures a Service.
type Option func(*Service)

// WithMenu sets the menu orders are priced against.
func WithMenu(m *menu.Menu) Option {
	return func(s *Service) {
		if m != nil {
			s.menu = m
		}
	}
}

// NewService wires the evaluator and backend. Backend calls run under policy.
// Orders are priced against the default menu unless WithMenu is given.
func NewService(ev *delivery.Evaluator, be backend.Backend, policy resilience.Policy, opts ...Option) *Service {
	s := &Service{evaluator: ev, backend: be, policy: policy, menu: menu.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Placed is the outcome of a successful order.
type Placed struct {
	Receipt *backend.OrderReceipt `json:"receipt"`
	Branch  string                `json:"branch"`
	// Eligibility is set for delivery orders.
	Eligibility *delivery.Result `json:"eligibility,omitempty"`
}

// PlaceOrder validates the cart and destination, picks the branch and submits
// the order with retries on transient backend failures.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Placed, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	items, err := s.priceItems(req.Items)
	if err != nil {
		return nil, err
	}
	state := cart.New(items...)

	mode := req.Mode
	if mode == "" {
		mode = Delivery
	}

	placed := &Placed{}
	order := backend.OrderRequest{
		IdempotencyKey: req.IdempotencyKey,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		Phone:          strings.TrimSpace(req.Phone),
		Lines:          state.Lines(),
		Total:          state.Total(),
	}
	if order.IdempotencyKey == "" {
		order.IdempotencyKey = uuid.New().String()
	}

	switch mode {
	case Delivery:
		key, res, err := s.deliveryBranch(req)
		if err != nil {
			return nil, err
		}
		loc := *req.Location
		order.BranchKey = key
		order.Location = &loc
		placed.Eligibility = res
	case Pickup:
		if _, ok := s.evaluator.Registry().Get(req.BranchKey); !ok {
			return nil, eris.Wrapf(ErrUnknownBranch, "%q", req.BranchKey)
		}
		order.BranchKey = req.BranchKey
	default:
		return nil, eris.Wrapf(backend.ErrValidation, "unknown mode %q", mode)
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	receipt, err := resilience.Call(ctx, s.policy, func(ctx context.Context) (*backend.OrderReceipt, error) {
		return s.backend.CreateOrder(ctx, order)
	})
	if err != nil {
		zap.L().Error("order submission failed",
			zap.String("idempotency_key", order.IdempotencyKey),
			zap.String("branch", order.BranchKey),
			zap.Error(err),
		)
		return nil, eris.Wrap(err, "checkout: place order")
	}

	placed.Receipt = receipt
	placed.Branch = order.BranchKey
	return placed, nil
}

// priceItems resolves every item against the menu, by key or display name,
// and takes its price from there. A zero price means "use the menu price";
// any other price must match the menu.
func (s *Service) priceItems(items []cart.Item) ([]cart.Item, error) {
	out := make([]cart.Item, 0, len(items))
	for i, it := range items {
		sel, err := s.menu.Lookup(it.Name, it.Size)
		if err != nil {
			return nil, &backend.Error{Kind: backend.ErrValidation, Op: "checkout: item " + strconv.Itoa(i+1), Err: err}
		}
		if it.Price != 0 && it.Price != sel.Price {
			return nil, eris.Wrapf(backend.ErrValidation, "item %d: %s %s costs %s, got %s",
				i+1, sel.Name, sel.Size, cart.FormatPula(sel.Price), cart.FormatPula(it.Price))
		}
		out = append(out, cart.Item{Name: sel.Name, Size: sel.Size, Price: sel.Price})
	}
	return out, nil
}

// deliveryBranch returns the branch that serves req.Location. An explicit
// BranchKey must itself be within range; otherwise the nearest branch is used.
func (s *Service) deliveryBranch(req Request) (string, *delivery.Result, error) {
	if req.Location == nil {
		return "", nil, ErrLocationRequired
	}
	res, err := s.evaluator.CheckAvailability(*req.Location)
	if err != nil {
		return "", nil, eris.Wrap(err, "checkout: check availability")
	}
	if !res.InDeliveryRange {
		return "", nil, &OutOfRangeError{Result: res}
	}
	if req.BranchKey == "" || req.BranchKey == res.NearestBranch.Key {
		return res.NearestBranch.Key, &res, nil
	}

	all, err := s.evaluator.AllBranchesByDistance(*req.Location)
	if err != nil {
		return "", nil, eris.Wrap(err, "checkout: rank branches")
	}
	for _, bd := range all {
		if bd.Key != req.BranchKey {
			continue
		}
		if !bd.InDeliveryRange {
			return "", nil, &OutOfRangeError{Result: delivery.Result{
				InCityArea:       res.InCityArea,
				NearestBranch:    &bd,
				DistanceToCityKm: res.DistanceToCityKm,
				Reason: "Sorry, " + bd.Name + " is " + delivery.FormatKm(bd.DistanceKm) +
					" km away and does not deliver to this address",
			}}
		}
		return bd.Key, &res, nil
	}
	return "", nil, eris.Wrapf(ErrUnknownBranch, "%q", req.BranchKey)
}

// SubmitReview validates and stores a review.
func (s *Service) SubmitReview(ctx context.Context, sub review.Submission) (*review.Review, error) {
	if _, err := sub.Validate(); err != nil {
		return nil, err
	}
	r, err := resilience.Call(ctx, s.policy, func(ctx context.Context) (*review.Review, error) {
		return s.backend.InsertReview(ctx, sub)
	})
	if err != nil {
		return nil, eris.Wrap(err, "checkout: submit review")
	}
	return r, nil
}

// Reviews lists reviews for display.
func (s *Service) Reviews(ctx context.Context, f review.Filter) ([]review.Review, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	reviews, err := resilience.Call(ctx, s.policy, func(ctx context.Context) ([]review.Review, error) {
		return s.backend.ListReviews(ctx, f)
	})
	if err != nil {
		return nil, eris.Wrap(err, "checkout: list reviews")
	}
	return reviews, nil
}

// BackendState reports the backend circuit breaker state for health checks.
func (s *Service) BackendState() string {
	if s.policy.Breaker == nil {
		return resilience.Closed.String()
	}
	return s.policy.Breaker.State().String()
}
