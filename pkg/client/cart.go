package client

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	cartKey     = "cart"
	wishlistKey = "wishlist"
)

// CartItem is one product line in the cart. Price is the unit price shown to
// the shopper; the server re-prices every line at checkout.
type CartItem struct {
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId,omitempty"`
	Name         string          `json:"name"`
	Thumbnail    string          `json:"thumbnail,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CODAvailable bool            `json:"codAvailable"`
}

// Subtotal is Price × Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) sameLine(productID, variantID string) bool {
	return i.ProductID == productID && i.VariantID == variantID
}

// ItemFor builds a cart line for product p and the given variant (empty for
// the base product).
func ItemFor(p *Product, variantID string, quantity int) (CartItem, error) {
	price := p.BasePrice
	if variantID != "" {
		v, ok := p.Variant(variantID)
		if !ok {
			return CartItem{}, errors.New("storefront client: variant not found on product")
		}
		price = v.Price
	}
	return CartItem{
		ProductID:    p.ID,
		VariantID:    variantID,
		Name:         p.Title,
		Thumbnail:    p.Thumbnail(),
		Price:        decimal.NewFromFloat(price),
		Quantity:     quantity,
		CODAvailable: p.CODAvailable,
	}, nil
}

// Cart is the shopper's basket, written through to a Store on every change.
type Cart struct {
	mu    sync.Mutex
	store Store
	items []CartItem
}

// NewCart loads the cart saved in store, if any.
func NewCart(store Store) (*Cart, error) {
	c := &Cart{store: store}
	if err := store.Load(cartKey, &c.items); err != nil && !errors.Is(err, ErrNotStored) {
		return nil, err
	}
	return c, nil
}

// Add puts item in the cart, merging quantities with an existing line for
// the same product and variant.
func (c *Cart) Add(item CartItem) error {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].sameLine(item.ProductID, item.VariantID) {
			c.items[i].Quantity += item.Quantity
			return c.save()
		}
	}
	c.items = append(c.items, item)
	return c.save()
}

// SetQuantity changes a line's quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(productID, variantID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if !c.items[i].sameLine(productID, variantID) {
			continue
		}
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = quantity
		}
		return c.save()
	}
	return nil
}

func (c *Cart) Remove(productID, variantID string) error {
	return c.SetQuantity(productID, variantID, 0)
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.store.Delete(cartKey)
}

func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CartItem(nil), c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CODEligible reports whether every line can be paid cash on delivery.
func (c *Cart) CODEligible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if !it.CODAvailable {
			return false
		}
	}
	return len(c.items) > 0
}

// Lines converts the cart into checkout lines.
func (c *Cart) Lines() []CheckoutLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]CheckoutLine, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, CheckoutLine{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity})
	}
	return lines
}

func (c *Cart) save() error {
	return c.store.Save(cartKey, c.items)
}

type WishlistItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Price     decimal.Decimal `json:"price"`
}

// Wishlist is a set of saved products, persisted like the cart.
type Wishlist struct {
	mu    sync.Mutex
	store Store
	items []WishlistItem
}

func NewWishlist(store Store) (*Wishlist, error) {
	w := &Wishlist{store: store}
	if err := store.Load(wishlistKey, &w.items); err != nil && !errors.Is(err, ErrNotStored) {
		return nil, err
	}
	return w, nil
}

// Toggle adds p when absent and removes it otherwise. It reports whether p is
// now in the wishlist.
func (w *Wishlist) Toggle(p *Product) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.index(p.ID); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
		return false, w.save()
	}
	w.items = append(w.items, WishlistItem{
		ProductID: p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Thumbnail: p.Thumbnail(),
		Price:     decimal.NewFromFloat(p.BasePrice),
	})
	return true, w.save()
}

func (w *Wishlist) Remove(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.index(productID)
	if i < 0 {
		return nil
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	return w.save()
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index(productID) >= 0
}

func (w *Wishlist) Items() []WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WishlistItem(nil), w.items...)
}

func (w *Wishlist) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	return w.store.Delete(wishlistKey)
}

func (w *Wishlist) index(productID string) int {
	for i, it := range w.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (w *Wishlist) save() error {
	return w.store.Save(wishlistKey, w.items)
}
