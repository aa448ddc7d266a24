package categories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrimonio-app/patrimonio/internal/shared"
)

type memoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]Category
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: map[int64]Category{}}
}

func (m *memoryRepo) List(_ context.Context, filters shared.ListFilters) ([]Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Category
	for id := int64(1); id <= m.nextID; id++ {
		c, ok := m.categories[id]
		if !ok {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, c)
	}
	total := len(matched)
	start := shared.Offset(filters.Page, filters.Limit)
	if start > total {
		start = total
	}
	end := start + filters.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

func (m *memoryRepo) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.categories[id]
	return ok, nil
}

func (m *memoryRepo) Create(_ context.Context, c Category) (Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.categories[c.ID] = c
	return c, nil
}
