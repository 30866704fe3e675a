package mockapi

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

// MemoryStore keeps records in process memory. Ids grow per collection.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[string]map[int64]Row
	nextID map[string]int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:   map[string]map[int64]Row{},
		nextID: map[string]int64{},
		now:    time.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Row, 0, len(s.rows[collection]))
	for _, r := range s.rows[collection] {
		out = append(out, copyRow(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection string, id int64) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[collection][id]
	if !ok {
		return Row{}, ErrNotFound
	}
	return copyRow(r), nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any, unique string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(collection, unique, data, 0) {
		return Row{}, ErrDuplicate
	}
	s.nextID[collection]++
	now := s.now()
	r := Row{ID: s.nextID[collection], Data: copyData(data), CreatedAt: now, UpdatedAt: now}
	if s.rows[collection] == nil {
		s.rows[collection] = map[int64]Row{}
	}
	s.rows[collection][r.ID] = r
	return copyRow(r), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, id int64, data map[string]any, unique string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[collection][id]
	if !ok {
		return Row{}, ErrNotFound
	}
	if s.taken(collection, unique, data, id) {
		return Row{}, ErrDuplicate
	}
	merged := copyData(r.Data)
	for k, v := range data {
		merged[k] = v
	}
	r.Data = merged
	r.UpdatedAt = s.now()
	s.rows[collection][id] = r
	return copyRow(r), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.rows[collection], id)
	return nil
}

// taken reports whether another row already holds data[unique].
func (s *MemoryStore) taken(collection, unique string, data map[string]any, self int64) bool {
	if unique == "" {
		return false
	}
	want := resource.FormatScalar(data[unique])
	if want == "" {
		return false
	}
	for id, r := range s.rows[collection] {
		if id != self && resource.FormatScalar(r.Data[unique]) == want {
			return true
		}
	}
	return false
}

func copyRow(r Row) Row {
	r.Data = copyData(r.Data)
	return r
}

func copyData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
