// Package recent keeps a bounded, best-effort buffer of recently seen orders.
// It is never authoritative: a miss means the order must be fetched upstream.
package recent

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

const DefaultCapacity = 200

// Buffer evicts the least recently remembered order once full. Reads use
// Peek and never refresh an entry.
type Buffer struct {
	orders *lru.Cache[string, shopify.Order]
}

func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, shopify.Order](capacity)
	if err != nil {
		return nil, err
	}
	return &Buffer{orders: c}, nil
}

// Remember stores order under its id. Orders without an id are ignored.
func (b *Buffer) Remember(order shopify.Order) {
	if order.ID == 0 {
		return
	}
	b.orders.Add(strconv.FormatInt(order.ID, 10), order)
}

func (b *Buffer) Get(id string) (shopify.Order, bool) {
	return b.orders.Peek(id)
}

// List returns up to limit orders, newest first. limit <= 0 returns all.
func (b *Buffer) List(limit int) []shopify.Order {
	keys := b.orders.Keys()
	if limit <= 0 || limit > len(keys) {
		limit = len(keys)
	}

	out := make([]shopify.Order, 0, limit)
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		if order, ok := b.orders.Peek(keys[i]); ok {
			out = append(out, order)
		}
	}
	return out
}

func (b *Buffer) Len() int {
	return b.orders.Len()
}
