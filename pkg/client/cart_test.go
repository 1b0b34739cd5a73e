package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mug() *Product {
	return &Product{
		ID:           "p1",
		Title:        "Photo Mug",
		Slug:         "photo-mug",
		BasePrice:    19.99,
		CODAvailable: true,
		Variants:     []Variant{{ID: "v-large", Size: "L", Price: 24.99}},
		Media:        []Media{{URL: "/uploads/mug.mp4", Type: "video"}, {URL: "/uploads/mug.png", Type: "image"}},
	}
}

func TestCart_MergesLinesAndTotalsExactly(t *testing.T) {
	cart, err := NewCart(NewMemoryStore())
	require.NoError(t, err)

	base, err := ItemFor(mug(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/mug.png", base.Thumbnail)

	require.NoError(t, cart.Add(base))
	require.NoError(t, cart.Add(base))
	require.NoError(t, cart.Add(base))
	large, err := ItemFor(mug(), "v-large", 2)
	require.NoError(t, err)
	require.NoError(t, cart.Add(large))

	assert.Len(t, cart.Items(), 2)
	assert.Equal(t, 5, cart.Count())
	// 3 × 19.99 + 2 × 24.99, no float drift.
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("109.95")), cart.Total().String())
	assert.Equal(t, []CheckoutLine{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", VariantID: "v-large", Quantity: 2},
	}, cart.Lines())
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	cart, err := NewCart(NewMemoryStore())
	require.NoError(t, err)
	item, _ := ItemFor(mug(), "", 2)
	require.NoError(t, cart.Add(item))

	require.NoError(t, cart.SetQuantity("p1", "", 5))
	assert.Equal(t, 5, cart.Count())

	require.NoError(t, cart.Remove("p1", ""))
	assert.Empty(t, cart.Items())
	assert.True(t, cart.Total().IsZero())
	assert.False(t, cart.CODEligible(), "an empty cart cannot check out")
}

func TestCart_CODEligibility(t *testing.T) {
	cart, err := NewCart(NewMemoryStore())
	require.NoError(t, err)
	item, _ := ItemFor(mug(), "", 1)
	require.NoError(t, cart.Add(item))
	assert.True(t, cart.CODEligible())

	poster := &Product{ID: "p2", Title: "Poster", BasePrice: 9}
	item, _ = ItemFor(poster, "", 1)
	require.NoError(t, cart.Add(item))
	assert.False(t, cart.CODEligible())
}

func TestItemFor_UnknownVariant(t *testing.T) {
	_, err := ItemFor(mug(), "v-missing", 1)
	assert.Error(t, err)
}

func TestCartAndWishlist_PersistAcrossInstances(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	cart, err := NewCart(store)
	require.NoError(t, err)
	item, _ := ItemFor(mug(), "v-large", 1)
	require.NoError(t, cart.Add(item))

	wishlist, err := NewWishlist(store)
	require.NoError(t, err)
	added, err := wishlist.Toggle(mug())
	require.NoError(t, err)
	assert.True(t, added)

	cart2, err := NewCart(store)
	require.NoError(t, err)
	require.Len(t, cart2.Items(), 1)
	assert.Equal(t, "v-large", cart2.Items()[0].VariantID)
	assert.True(t, cart2.Total().Equal(decimal.RequireFromString("24.99")))

	wishlist2, err := NewWishlist(store)
	require.NoError(t, err)
	assert.True(t, wishlist2.Contains("p1"))

	require.NoError(t, cart2.Clear())
	cart3, err := NewCart(store)
	require.NoError(t, err)
	assert.Empty(t, cart3.Items())
}

func TestWishlist_ToggleRemoves(t *testing.T) {
	w, err := NewWishlist(NewMemoryStore())
	require.NoError(t, err)

	added, err := w.Toggle(mug())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = w.Toggle(mug())
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, w.Contains("p1"))
	assert.NoError(t, w.Remove("p1"))
}
