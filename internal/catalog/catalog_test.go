package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeehouse/internal/domain"
)

func TestDefault_ProductIDsUnique(t *testing.T) {
	c := Default()
	seen := map[string]bool{}
	for _, p := range c.List(Filter{}) {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.Positive(t, p.Price, p.ID)
	}
	assert.Len(t, seen, 16)
}

func TestList_CategoryAndSearch(t *testing.T) {
	c := Default()

	hot := c.List(Filter{Category: string(domain.CategoryHot)})
	require.Len(t, hot, 5)
	assert.Equal(t, "1", hot[0].ID)

	assert.Len(t, c.List(Filter{Category: CategoryAll}), 16)

	// регистр не важен, ищем и в описании
	found := c.List(Filter{Query: "  МЯТОЙ "})
	require.Len(t, found, 2)
	assert.Equal(t, "8", found[0].ID)
	assert.Equal(t, "9", found[1].ID)

	assert.Empty(t, c.List(Filter{Category: string(domain.CategoryFood), Query: "латте"}))
}

func TestList_PriceAndAvailability(t *testing.T) {
	c := New([]domain.Product{
		{ID: "a", Price: 100, Available: true},
		{ID: "b", Price: 200, Available: false},
		{ID: "c", Price: 300, Available: true},
	}, nil)
	lo, hi := int64(150), int64(300)

	got := c.List(Filter{MinPrice: &lo, MaxPrice: &hi})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	got = c.List(Filter{AvailableOnly: true})
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[1].ID)
}

func TestProduct(t *testing.T) {
	c := Default()
	p, err := c.Product("3")
	require.NoError(t, err)
	assert.Equal(t, "Латте", p.Name)

	size, ok := p.FindSize("l")
	require.True(t, ok)
	assert.Equal(t, int64(90), size.Price)
	_, ok = p.FindAddon("ice")
	assert.False(t, ok)

	_, err = c.Product("0")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
