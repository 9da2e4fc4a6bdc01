package records

import (
	"context"
	"slices"
	"strconv"
	"sync"
)

// MemoryBackend keeps records in process memory. It backs the no-persistence mode
// used when no external store is configured.
type MemoryBackend struct {
	mu     sync.Mutex
	rows   []Row
	nextID int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Search(_ context.Context, userID int64) ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []Row{}
	for _, row := range b.rows {
		if row.UserID == userID {
			row.Leagues = slices.Clone(row.Leagues)
			out = append(out, row)
		}
	}
	return out, nil
}

func (b *MemoryBackend) Create(_ context.Context, row Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	row.ID = "mem" + strconv.Itoa(b.nextID)
	row.Leagues = slices.Clone(row.Leagues)
	b.rows = append(b.rows, row)
	return nil
}

func (b *MemoryBackend) Update(_ context.Context, id string, row Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.rows {
		if b.rows[i].ID == id {
			row.ID = id
			row.Leagues = slices.Clone(row.Leagues)
			b.rows[i] = row
			return nil
		}
	}
	return ErrRowNotFound
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = slices.DeleteFunc(b.rows, func(row Row) bool { return row.ID == id })
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored rows
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}
