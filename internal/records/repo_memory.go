package records

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repo for local development and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Record
	order []string
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Record)}
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) UpdateFields(ctx context.Context, id string, f Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.byID[id] = rec.withFields(f)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) Scan(ctx context.Context) ([]Record, error) {
	return r.ScanFirstNameContains(ctx, "")
}

func (r *MemoryRepo) ScanFirstNameContains(ctx context.Context, substr string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		rec := r.byID[id]
		if strings.Contains(rec.FirstName, substr) {
			out = append(out, rec)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
