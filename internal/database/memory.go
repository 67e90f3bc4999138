package database

import (
	"context"
	"sync"
	"time"

	"ridebooking/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore. Contents are lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.Fields
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]models.Fields),
		now:         time.Now,
	}
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.put(collection, id, fields)
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.put(collection, id, fields)
	return nil
}

func (s *MemoryStore) put(collection, id string, fields models.Fields) {
	doc := fields.Resolve(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]models.Fields)
		s.collections[collection] = docs
	}
	docs[id] = doc
}

// Documents returns copies of every document in a collection keyed by id.
// Nothing in the request path reads documents back; tests use it to inspect writes.
func (s *MemoryStore) Documents(collection string) map[string]models.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Fields, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		out[id] = copyFields(doc)
	}
	return out
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func copyFields(f models.Fields) models.Fields {
	out := make(models.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
