// Package menu lists the pizzas on offer and resolves size selections to prices.
package menu

import (
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnknownItem is returned for an item key that is not on the menu.
	ErrUnknownItem = eris.New("menu: unknown item")
	// ErrUnknownSize is returned for a size the item is not sold in.
	ErrUnknownSize = eris.New("menu: unknown size")
)

// Size is one purchasable size of an item. Prices are whole pula.
type Size struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Price int    `json:"price" yaml:"price"`
}

// Item is a menu entry.
type Item struct {
	Key   string `json:"key" yaml:"key"`
	Name  string `json:"name" yaml:"name"`
	Sizes []Size `json:"sizes" yaml:"sizes"`
}

// Selection is what gets added to the cart once a size is picked.
type Selection struct {
	Name  string `json:"name"`
	Size  string `json:"size"`
	Price int    `json:"price"`
}

// Menu is an ordered list of items.
type Menu struct {
	items []Item
}

// New creates a menu; item keys must be unique and every item needs at
// least one size with a positive price.
func New(items []Item) (*Menu, error) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Key == "" {
			return nil, eris.New("menu: item with empty key")
		}
		if seen[it.Key] {
			return nil, eris.Errorf("menu: duplicate item %q", it.Key)
		}
		seen[it.Key] = true
		if len(it.Sizes) == 0 {
			return nil, eris.Errorf("menu: item %q has no sizes", it.Key)
		}
		for _, s := range it.Sizes {
			if s.Price <= 0 {
				return nil, eris.Errorf("menu: item %q size %q has no price", it.Key, s.Key)
			}
		}
	}
	return &Menu{items: items}, nil
}

// Items returns the menu items in order.
func (m *Menu) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// SelectSize resolves an item and size key to the name, size label and price
// carried into the cart.
func (m *Menu) SelectSize(itemKey, sizeKey string) (Selection, error) {
	for _, it := range m.items {
		if it.Key != itemKey {
			continue
		}
		for _, s := range it.Sizes {
			if s.Key == sizeKey {
				return Selection{Name: it.Name, Size: s.Label, Price: s.Price}, nil
			}
		}
		return Selection{}, eris.Wrapf(ErrUnknownSize, "%s/%s", itemKey, sizeKey)
	}
	return Selection{}, eris.Wrapf(ErrUnknownItem, "%s", itemKey)
}

// Lookup resolves an item by key or display name and a size by key or label,
// ignoring case and surrounding space. It lets carts built from either form
// be priced against the menu.
func (m *Menu) Lookup(item, size string) (Selection, error) {
	item, size = strings.TrimSpace(item), strings.TrimSpace(size)
	for _, it := range m.items {
		if !strings.EqualFold(it.Key, item) && !strings.EqualFold(it.Name, item) {
			continue
		}
		for _, s := range it.Sizes {
			if strings.EqualFold(s.Key, size) || strings.EqualFold(s.Label, size) {
				return Selection{Name: it.Name, Size: s.Label, Price: s.Price}, nil
			}
		}
		return Selection{}, eris.Wrapf(ErrUnknownSize, "%s/%s", item, size)
	}
	return Selection{}, eris.Wrapf(ErrUnknownItem, "%s", item)
}

func pizzaSizes(small, medium, large int) []Size {
	return []Size{
		{Key: "small", Label: "Small (8\")", Price: small},
		{Key: "medium", Label: "Medium (10\")", Price: medium},
		{Key: "large", Label: "Large (12\")", Price: large},
	}
}

// Default returns the house menu.
func Default() *Menu {
	return &Menu{items: []Item{
		{Key: "margherita", Name: "Margherita", Sizes: pizzaSizes(65, 95, 125)},
		{Key: "pepperoni", Name: "Pepperoni", Sizes: pizzaSizes(75, 105, 140)},
		{Key: "bbq-chicken", Name: "BBQ Chicken", Sizes: pizzaSizes(80, 115, 150)},
		{Key: "seswaa", Name: "Seswaa Special", Sizes: pizzaSizes(85, 120, 160)},
		{Key: "veggie", Name: "Veggie Supreme", Sizes: pizzaSizes(70, 100, 130)},
	}}
}
