package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	margheritaSmall = Item{Name: "Margherita", Size: "Small (8\")", Price: 65}
	margheritaLarge = Item{Name: "Margherita", Size: "Large (12\")", Price: 125}
	pepperoniSmall  = Item{Name: "Pepperoni", Size: "Small (8\")", Price: 75}
)

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := New(margheritaSmall)
	after := Reduce(before, Add{Item: pepperoniSmall})

	assert.Equal(t, 1, before.Count())
	assert.Equal(t, 2, after.Count())

	cleared := Reduce(after, Clear{})
	assert.Equal(t, 0, cleared.Count())
	assert.Equal(t, 2, after.Count())
}

func TestReduce_SharedBackingArray(t *testing.T) {
	base := New(margheritaSmall, pepperoniSmall)
	a := Reduce(base, Add{Item: margheritaLarge})
	b := Reduce(base, Add{Item: pepperoniSmall})

	assert.Equal(t, margheritaLarge, a.Items()[2])
	assert.Equal(t, pepperoniSmall, b.Items()[2])
}

func TestReduce_Remove(t *testing.T) {
	s := New(margheritaSmall, pepperoniSmall, margheritaLarge)

	removed := Reduce(s, Remove{Index: 1})
	assert.Equal(t, []Item{margheritaSmall, margheritaLarge}, removed.Items())
	assert.Equal(t, 3, s.Count())

	assert.Equal(t, s.Items(), Reduce(s, Remove{Index: 3}).Items())
	assert.Equal(t, s.Items(), Reduce(s, Remove{Index: -1}).Items())
}

func TestTotalAndCount(t *testing.T) {
	s := New(margheritaSmall, margheritaSmall, margheritaLarge)
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 255, s.Total())
	assert.Equal(t, 0, State{}.Total())
}

func TestLines_GroupsDuplicates(t *testing.T) {
	s := New(margheritaSmall, pepperoniSmall, margheritaSmall, margheritaLarge, margheritaSmall)

	lines := s.Lines()
	assert.Equal(t, []Line{
		{Name: "Margherita", Size: "Small (8\")", UnitPrice: 65, Quantity: 3},
		{Name: "Pepperoni", Size: "Small (8\")", UnitPrice: 75, Quantity: 1},
		{Name: "Margherita", Size: "Large (12\")", UnitPrice: 125, Quantity: 1},
	}, lines)

	sum := 0
	for _, l := range lines {
		sum += l.Subtotal()
	}
	assert.Equal(t, s.Total(), sum)
}

func TestLines_Empty(t *testing.T) {
	assert.Empty(t, State{}.Lines())
}

func TestFormatPula(t *testing.T) {
	assert.Equal(t, "P0", FormatPula(0))
	assert.Equal(t, "P85", FormatPula(85))
	assert.Equal(t, "P1,250", FormatPula(1250))
}
