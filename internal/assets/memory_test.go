package assets

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrimonio-app/patrimonio/internal/shared"
	"github.com/patrimonio-app/patrimonio/jobs"
)

// memoryRepo mimics the Postgres repository: WithTx is serialised and only
// commits staged writes when fn succeeds.
type memoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	assets     map[int64]Asset
	keys       map[string]bool
	audit      []shared.AuditLog
	categories map[int64]bool

	skipPrecheck bool
	failAudit    error
	onCommit     func()
}

func newMemoryRepo(categoryIDs ...int64) *memoryRepo {
	m := &memoryRepo{
		assets:     map[int64]Asset{},
		keys:       map[string]bool{},
		categories: map[int64]bool{},
	}
	for _, id := range categoryIDs {
		m.categories[id] = true
	}
	return m
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, a := range tx.assets {
		m.assets[a.ID] = a
	}
	for _, k := range tx.keys {
		m.keys[k] = true
	}
	m.audit = append(m.audit, tx.audit...)
	if m.onCommit != nil {
		m.onCommit()
	}
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memoryRepo) PatrimonioExists(_ context.Context, patrimonio string) (bool, error) {
	if m.skipPrecheck {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasPatrimonio(patrimonio), nil
}

func (m *memoryRepo) List(_ context.Context, filters shared.ListFilters) ([]Asset, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Asset
	for _, a := range m.assets {
		if filters.CategoryID != nil && a.CategoryID != *filters.CategoryID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(a.Patrimonio), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
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

func (m *memoryRepo) hasPatrimonio(patrimonio string) bool {
	for _, a := range m.assets {
		if a.Patrimonio == patrimonio {
			return true
		}
	}
	return false
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

func (m *memoryRepo) seed(patrimonio string, categoryID, ownerID int64) Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := Asset{ID: m.nextID, Patrimonio: patrimonio, CategoryID: categoryID, OwnerID: ownerID, FieldValues: []FieldValue{}, CreatedAt: time.Now()}
	m.assets[a.ID] = a
	return a
}

type memoryTx struct {
	repo   *memoryRepo
	assets []Asset
	keys   []string
	audit  []shared.AuditLog
}

func (t *memoryTx) ClaimIdempotencyKey(_ context.Context, key string) error {
	if t.repo.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	t.keys = append(t.keys, key)
	return nil
}

func (t *memoryTx) Insert(_ context.Context, asset Asset) (*Asset, error) {
	if t.repo.hasPatrimonio(asset.Patrimonio) {
		return nil, ErrPatrimonioTaken
	}
	if !t.repo.categories[asset.CategoryID] {
		return nil, ErrCategoryMissing
	}
	t.repo.nextID++
	asset.ID = t.repo.nextID
	asset.CreatedAt = time.Now()
	t.assets = append(t.assets, asset)
	return &asset, nil
}

func (t *memoryTx) RecordAudit(_ context.Context, log shared.AuditLog) error {
	if t.repo.failAudit != nil {
		return t.repo.failAudit
	}
	t.audit = append(t.audit, log)
	return nil
}

// categoryStub answers existence from a fixed set.
type categoryStub map[int64]bool

func (c categoryStub) Exists(_ context.Context, id int64) (bool, error) {
	return c[id], nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []jobs.AssetCreatedPayload
	ctxErrs  []error
	err      error
}

func (p *recordingPublisher) EnqueueAssetCreated(ctx context.Context, payload jobs.AssetCreatedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

type counter struct{ n atomic.Int64 }

func (c *counter) IncAssetsCreated() { c.n.Add(1) }
