// Package sessions keeps in-flight screening sessions and the signed cookie
// tokens that point at them.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shravani77747/ASD-Screening/internal/cache"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

// ErrNotFound means the session expired, was restarted, or never existed.
var ErrNotFound = errors.New("session not found")

// Store persists sessions for their TTL only.
type Store interface {
	Get(ctx context.Context, id string) (*screening.Session, error)
	Save(ctx context.Context, s *screening.Session) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a random session id.
func NewID() string {
	return uuid.NewString()
}

// MemoryStore keeps sessions in process. Callers get and give copies so a
// handler cannot mutate stored state without Save.
type MemoryStore struct {
	items *cache.Cache[*screening.Session]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: cache.New[*screening.Session](ttl, time.Minute)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*screening.Session, error) {
	s, ok := m.items.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *screening.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session has no id")
	}
	m.items.Set(s.ID, s.Clone())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.items.Delete(id)
	return nil
}

// Len reports stored sessions, including ones awaiting cleanup.
func (m *MemoryStore) Len() int {
	return m.items.Size()
}

func (m *MemoryStore) Close() {
	m.items.Close()
}
