package sessions

import (
	"context"
	"errors"

	"github.com/shravani77747/ASD-Screening/internal/resilience"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

// GuardedStore fails fast while the wrapped store keeps erroring. A missing
// session is a normal answer and does not count against the store.
type GuardedStore struct {
	store   Store
	breaker *resilience.CircuitBreaker
}

func NewGuardedStore(store Store, breaker *resilience.CircuitBreaker) *GuardedStore {
	return &GuardedStore{store: store, breaker: breaker}
}

func (g *GuardedStore) Get(ctx context.Context, id string) (*screening.Session, error) {
	var s *screening.Session
	var notFound bool
	err := g.breaker.Call(func() error {
		var err error
		s, err = g.store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			notFound = true
			return nil
		}
		return err
	})
	if notFound {
		return nil, ErrNotFound
	}
	return s, err
}

func (g *GuardedStore) Save(ctx context.Context, s *screening.Session) error {
	return g.breaker.Call(func() error { return g.store.Save(ctx, s) })
}

func (g *GuardedStore) Delete(ctx context.Context, id string) error {
	return g.breaker.Call(func() error { return g.store.Delete(ctx, id) })
}

// Stats reports the breaker state
func (g *GuardedStore) Stats() map[string]interface{} {
	return g.breaker.GetStats()
}
