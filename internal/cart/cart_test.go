package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

var (
	chips = model.ProductSummary{ID: 0, Name: "Practical Chips", Price: 862}
	soap  = model.ProductSummary{ID: 1, Name: "Practical Soap", Price: 315}
)

func TestAddItem_SameNameMerges(t *testing.T) {
	s := Empty()
	for i := 0; i < 5; i++ {
		s = AddItem(s, chips)
	}

	assert.Equal(t, 1, DistinctCount(s))
	item, ok := Item(s, chips.Name)
	require.True(t, ok)
	assert.Equal(t, 5, item.Count)
}

func TestAddItem_DifferentNamesIndependent(t *testing.T) {
	s := AddItem(Empty(), chips)
	s = AddItem(s, soap)
	s = AddItem(s, soap)

	assert.Equal(t, 2, DistinctCount(s))

	c, _ := Item(s, chips.Name)
	p, _ := Item(s, soap.Name)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, 2, p.Count)
}

func TestAddItem_FirstSeenPriceWins(t *testing.T) {
	s := AddItem(Empty(), model.ProductSummary{ID: 7, Name: "Gorgeous Shoes", Price: 836})
	s = AddItem(s, model.ProductSummary{ID: 8, Name: "Gorgeous Shoes", Price: 448})

	item, ok := Item(s, "Gorgeous Shoes")
	require.True(t, ok)
	assert.Equal(t, int64(836), item.Price)
	assert.Equal(t, 2, item.Count)
	assert.Equal(t, 1, DistinctCount(s), "name is the merge key, ids are ignored")
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	before := AddItem(Empty(), chips)
	after := AddItem(before, chips)
	after = AddItem(after, soap)

	item, _ := Item(before, chips.Name)
	assert.Equal(t, 1, item.Count)
	assert.Equal(t, 1, DistinctCount(before))
	assert.Len(t, Items(before), 1)

	assert.Equal(t, 2, DistinctCount(after))
}

func TestAddItem_SharedOrderNotClobbered(t *testing.T) {
	base := AddItem(Empty(), chips)
	left := AddItem(base, soap)
	right := AddItem(base, model.ProductSummary{ID: 3, Name: "Generic Keyboard", Price: 151})

	assert.Equal(t, []string{"Practical Chips", "Practical Soap"}, names(Items(left)))
	assert.Equal(t, []string{"Practical Chips", "Generic Keyboard"}, names(Items(right)))
}

func TestClear(t *testing.T) {
	s := AddItem(AddItem(Empty(), chips), soap)
	cleared := Clear(s)

	assert.Equal(t, 0, DistinctCount(cleared))
	assert.Equal(t, int64(0), Total(cleared))
	assert.Empty(t, Items(cleared))
	assert.Equal(t, 2, DistinctCount(s))
}

func TestTotal(t *testing.T) {
	assert.Equal(t, int64(0), Total(Empty()))

	s := AddItem(Empty(), chips)
	s = AddItem(s, soap)
	s = AddItem(s, soap)

	var want int64
	for _, item := range Items(s) {
		want += item.Price * int64(item.Count)
	}
	assert.Equal(t, want, Total(s))
	assert.Equal(t, int64(862+2*315), Total(s))
}

func TestPureQueriesAreStable(t *testing.T) {
	s := AddItem(AddItem(Empty(), chips), soap)

	assert.Equal(t, Total(s), Total(s))
	assert.Equal(t, DistinctCount(s), DistinctCount(s))
	assert.Equal(t, Items(s), Items(s))
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := AddItem(Empty(), chips)
	items := Items(s)
	items[0].Count = 99

	item, _ := Item(s, chips.Name)
	assert.Equal(t, 1, item.Count)
}

func TestContains(t *testing.T) {
	s := AddItem(Empty(), chips)
	assert.True(t, Contains(s, chips.Name))
	assert.False(t, Contains(s, soap.Name))
	assert.False(t, Contains(Empty(), chips.Name))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, int64(1630), LineTotal(model.CartLineItem{Name: "Refined Mouse", Price: 815, Count: 2}))
}

func TestFromItems(t *testing.T) {
	s := FromItems([]model.CartLineItem{
		{Name: "Gorgeous Shoes", Price: 836, Count: 1},
		{Name: "Refined Mouse", Price: 815, Count: 2},
		{Name: "Gorgeous Shoes", Price: 448, Count: 3},
		{Name: "Ghost", Price: 1, Count: 0},
	})

	assert.Equal(t, 2, DistinctCount(s))
	shoes, _ := Item(s, "Gorgeous Shoes")
	assert.Equal(t, model.CartLineItem{Name: "Gorgeous Shoes", Price: 836, Count: 4}, shoes)
	assert.False(t, Contains(s, "Ghost"))
}

func names(items []model.CartLineItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}
