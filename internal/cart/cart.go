// Package cart accumulates the lines of one transaction in progress.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
)

// Item is what a Resolver knows about a sellable or rentable id.
type Item struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
}

type Resolver interface {
	Resolve(ctx context.Context, id string) (Item, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, id string) (Item, error)

func (f ResolverFunc) Resolve(ctx context.Context, id string) (Item, error) {
	return f(ctx, id)
}

// Cart keeps lines in insertion order and merges quantities by item id. It is
// not safe for concurrent use; a cart belongs to a single request.
type Cart struct {
	lines []domain.CartLine
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Build replays refs through AddItem so names and prices always come from the
// resolver.
func Build(ctx context.Context, resolver Resolver, refs []domain.CartItemRef) (*Cart, error) {
	c := New()
	for _, ref := range refs {
		if err := c.AddItem(ctx, resolver, ref.ItemID, ref.Quantity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddItem resolves itemID and adds quantity to its line. The stock check here
// is advisory; the authoritative one happens at commit. On error the cart is
// left as it was.
func (c *Cart) AddItem(ctx context.Context, resolver Resolver, itemID string, quantity int) error {
	if quantity < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	if itemID == "" {
		return store.Invalid("item_id", "item id is required")
	}

	item, err := resolver.Resolve(ctx, itemID)
	if err != nil {
		return err
	}

	existing := 0
	pos, found := c.index[item.ID]
	if found {
		existing = c.lines[pos].Quantity
	}
	if existing+quantity > item.Stock {
		return &store.InsufficientStockError{
			ItemID:    item.ID,
			Requested: existing + quantity,
			Available: item.Stock,
		}
	}

	if found {
		c.lines[pos].Quantity += quantity
		return nil
	}

	c.index[item.ID] = len(c.lines)
	c.lines = append(c.lines, domain.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  quantity,
	})
	return nil
}

func (c *Cart) RemoveItem(itemID string) {
	pos, ok := c.index[itemID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:pos], c.lines[pos+1:]...)
	delete(c.index, itemID)
	for i := pos; i < len(c.lines); i++ {
		c.index[c.lines[i].ItemID] = i
	}
}

func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Refs() []domain.CartItemRef {
	out := make([]domain.CartItemRef, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, domain.CartItemRef{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
