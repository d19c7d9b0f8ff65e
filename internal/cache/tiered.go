package cache

import (
	"context"
	"time"
)

// Tiered читает сначала из L1, затем из L2 и дозаполняет L1 при попадании в L2.
// Запись идет в оба уровня.
type Tiered struct {
	l1 Store
	l2 Store
}

// NewTiered создает двухуровневый кэш. l2 может быть nil.
func NewTiered(l1, l2 Store) *Tiered {
	return &Tiered{l1: l1, l2: l2}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, time.Duration, bool) {
	if v, ttl, ok := t.l1.Get(ctx, key); ok {
		return v, ttl, true
	}
	if t.l2 == nil {
		return nil, 0, false
	}

	v, ttl, ok := t.l2.Get(ctx, key)
	if !ok {
		return nil, 0, false
	}
	t.l1.Set(ctx, key, v, ttl)
	return v, ttl, true
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	t.l1.Set(ctx, key, value, ttl)
	if t.l2 != nil {
		t.l2.Set(ctx, key, value, ttl)
	}
}
