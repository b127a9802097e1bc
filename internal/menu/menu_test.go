package menu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSize(t *testing.T) {
	m := Default()

	sel, err := m.SelectSize("pepperoni", "large")
	require.NoError(t, err)
	assert.Equal(t, Selection{Name: "Pepperoni", Size: "Large (12\")", Price: 140}, sel)

	_, err = m.SelectSize("pepperoni", "family")
	assert.True(t, errors.Is(err, ErrUnknownSize))

	_, err = m.SelectSize("hawaiian", "small")
	assert.True(t, errors.Is(err, ErrUnknownItem))
}

func TestLookup(t *testing.T) {
	m := Default()
	want := Selection{Name: "Pepperoni", Size: "Large (12\")", Price: 140}

	for _, tc := range []struct{ item, size string }{
		{"pepperoni", "large"},
		{"Pepperoni", "Large (12\")"},
		{" PEPPERONI ", "LARGE"},
	} {
		sel, err := m.Lookup(tc.item, tc.size)
		require.NoError(t, err, tc)
		assert.Equal(t, want, sel)
	}

	_, err := m.Lookup("Free Lunch", "XXL")
	assert.True(t, errors.Is(err, ErrUnknownItem))

	_, err = m.Lookup("Pepperoni", "XXL")
	assert.True(t, errors.Is(err, ErrUnknownSize))
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Item{{Key: "a", Sizes: []Size{{Key: "s", Price: 10}}}, {Key: "a", Sizes: []Size{{Key: "s", Price: 10}}}})
	assert.Error(t, err)

	_, err = New([]Item{{Key: "a"}})
	assert.Error(t, err)

	_, err = New([]Item{{Key: "a", Sizes: []Size{{Key: "s", Price: 0}}}})
	assert.Error(t, err)

	_, err = New([]Item{{Sizes: []Size{{Key: "s", Price: 1}}}})
	assert.Error(t, err)

	m, err := New(Default().Items())
	require.NoError(t, err)
	assert.Len(t, m.Items(), 5)
}
