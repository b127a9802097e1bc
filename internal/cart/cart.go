// Package cart is the shopping cart as explicit state: every change goes
// through Reduce, which returns a new State and leaves its input untouched.
package cart

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Item is one add-to-cart click.
type Item struct {
	Name  string `json:"name"`
	Size  string `json:"size"`
	Price int    `json:"price"`
}

// Line is an item with its quantity, as submitted with an order.
type Line struct {
	Name      string `json:"name"`
	Size      string `json:"size"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() int { return l.UnitPrice * l.Quantity }

// State is an immutable snapshot of the cart.
type State struct {
	items []Item
}

// Action changes a cart state.
type Action interface {
	apply(items []Item) []Item
}

// Add appends an item.
type Add struct{ Item Item }

// Remove drops the item at Index; out-of-range indexes are ignored.
type Remove struct{ Index int }

// Clear empties the cart.
type Clear struct{}

func (a Add) apply(items []Item) []Item { return append(items, a.Item) }

func (a Remove) apply(items []Item) []Item {
	if a.Index < 0 || a.Index >= len(items) {
		return items
	}
	return append(items[:a.Index], items[a.Index+1:]...)
}

func (Clear) apply([]Item) []Item { return nil }

// Reduce returns the state after applying action to s.
func Reduce(s State, action Action) State {
	items := make([]Item, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return State{items: action.apply(items)}
}

// New builds a state holding items, in order.
func New(items ...Item) State {
	s := State{}
	for _, it := range items {
		s = Reduce(s, Add{Item: it})
	}
	return s
}

// Items returns the items in the order they were added.
func (s State) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of items (the cart badge).
func (s State) Count() int { return len(s.items) }

// Total is the sum of item prices.
func (s State) Total() int {
	total := 0
	for _, it := range s.items {
		total += it.Price
	}
	return total
}

// Lines groups identical name/size/price items into quantities, in order of
// first appearance.
func (s State) Lines() []Line {
	type key struct {
		name, size string
		price      int
	}
	pos := make(map[key]int)
	var lines []Line
	for _, it := range s.items {
		k := key{it.Name, it.Size, it.Price}
		if i, ok := pos[k]; ok {
			lines[i].Quantity++
			continue
		}
		pos[k] = len(lines)
		lines = append(lines, Line{Name: it.Name, Size: it.Size, UnitPrice: it.Price, Quantity: 1})
	}
	return lines
}

var printer = message.NewPrinter(language.English)

// FormatPula renders an amount as shown on the site, e.g. "P1,250".
func FormatPula(amount int) string {
	return printer.Sprintf("P%d", amount)
}
