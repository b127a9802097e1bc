// Package branch holds the fixed set of restaurant branches deliveries originate from.
package branch

import (
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/geo"
)

var (
	// ErrDuplicateBranch is returned when two branches share a key.
	ErrDuplicateBranch = eris.New("branch: duplicate key")
	// ErrInvalidBranch is returned for a branch with an empty key or a bad coordinate.
	ErrInvalidBranch = eris.New("branch: invalid branch")
)

// Branch is a physical location deliveries are dispatched from.
type Branch struct {
	Key      string         `json:"key" yaml:"key"`
	Name     string         `json:"name" yaml:"name"`
	Location geo.Coordinate `json:"location" yaml:"location"`
	Address  string         `json:"address" yaml:"address"`
}

// Registry is an immutable, ordered set of branches with unique keys.
// It is safe for concurrent use.
type Registry struct {
	branches []Branch
	byKey    map[string]int
	tree     *rtreego.Rtree
}

// DefaultBranches returns the Gaborone branches in registry order.
func DefaultBranches() []Branch {
	return []Branch{
		{
			Key:      "bontleng",
			Name:     "Bontleng",
			Location: geo.Coordinate{Lat: -24.6544, Lng: 25.9079},
			Address:  "Bontleng, Gaborone",
		},
		{
			Key:      "block9",
			Name:     "Block 9",
			Location: geo.Coordinate{Lat: -24.6418, Lng: 25.9213},
			Address:  "Block 9, Gaborone",
		},
	}
}

// Default returns a registry of DefaultBranches.
func Default() *Registry {
	r, err := NewRegistry(DefaultBranches())
	if err != nil {
		panic(err) // static data
	}
	return r
}

// NewRegistry validates branches and builds the registry. Keys must be
// unique; a repeated key fails instead of replacing the earlier branch.
// An empty list is accepted.
func NewRegistry(branches []Branch) (*Registry, error) {
	r := &Registry{
		branches: make([]Branch, 0, len(branches)),
		byKey:    make(map[string]int, len(branches)),
		tree:     rtreego.NewTree(2, 2, 16),
	}

	for i, b := range branches {
		b.Key = strings.TrimSpace(b.Key)
		if b.Key == "" {
			return nil, eris.Wrapf(ErrInvalidBranch, "branch %d: empty key", i)
		}
		if err := b.Location.Validate(); err != nil {
			return nil, eris.Wrapf(ErrInvalidBranch, "branch %q: %v", b.Key, err)
		}
		if _, ok := r.byKey[b.Key]; ok {
			return nil, eris.Wrapf(ErrDuplicateBranch, "branch %q", b.Key)
		}
		if b.Name == "" {
			b.Name = b.Key
		}

		item, err := newIndexedBranch(len(r.branches), b.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "branch %q: index", b.Key)
		}

		r.byKey[b.Key] = len(r.branches)
		r.branches = append(r.branches, b)
		r.tree.Insert(item)
	}

	return r, nil
}

// List returns every branch in registry order. Each call returns a new slice.
func (r *Registry) List() []Branch {
	out := make([]Branch, len(r.branches))
	copy(out, r.branches)
	return out
}

// Len returns the number of registered branches.
func (r *Registry) Len() int { return len(r.branches) }

// Get looks up a branch by key.
func (r *Registry) Get(key string) (Branch, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Branch{}, false
	}
	return r.branches[i], true
}
