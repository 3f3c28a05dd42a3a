package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwalczyk/chirp/internal/docstore"
)

// Store keeps documents in-process. It backs tests and local development and
// preserves insertion order per collection so unordered listings are
// deterministic.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]map[string]map[string]any // path -> id -> fields
	order map[string][]string                  // path -> ids in insertion order
}

// New initializes an empty in-memory store.
func New() *Store {
	return &Store{
		docs:  make(map[string]map[string]map[string]any),
		order: make(map[string][]string),
	}
}

func (s *Store) Get(ctx context.Context, path, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.docs[path][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *Store) Set(ctx context.Context, path, id string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if s.docs[path] == nil {
		s.docs[path] = make(map[string]map[string]any)
	}
	if _, exists := s.docs[path][id]; !exists {
		s.order[path] = append(s.order[path], id)
	}
	s.docs[path][id] = copyFields(fields)
	return id, nil
}

func (s *Store) Update(ctx context.Context, path, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[path][id]; !ok {
		return nil
	}
	delete(s.docs[path], id)
	ids := s.order[path]
	for i, existing := range ids {
		if existing == id {
			s.order[path] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context, path, orderBy string, descending bool) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]docstore.Document, 0, len(s.order[path]))
	for _, id := range s.order[path] {
		docs = append(docs, docstore.Document{ID: id, Fields: copyFields(s.docs[path][id])})
	}
	if orderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			less := lessValue(docs[i].Fields[orderBy], docs[j].Fields[orderBy])
			if descending {
				return !less && !equalValue(docs[i].Fields[orderBy], docs[j].Fields[orderBy])
			}
			return less
		})
	}
	return docs, nil
}

func (s *Store) Query(ctx context.Context, path, field string, equals any) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []docstore.Document
	for _, id := range s.order[path] {
		fields := s.docs[path][id]
		if equalValue(fields[field], equals) {
			docs = append(docs, docstore.Document{ID: id, Fields: copyFields(fields)})
		}
	}
	return docs, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// lessValue orders timestamps, numbers and strings; mixed types fall back to
// their string forms.
func lessValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func equalValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
