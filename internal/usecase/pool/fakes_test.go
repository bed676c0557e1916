package pool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

// birthDateForAge returns a date of birth making the profile exactly age years old at testNow.
func birthDateForAge(age int) string {
	return testNow.AddDate(-age, 0, 0).Format("2006-01-02")
}

func eligibleProfile(id string, age int, gender, country string) *domain.ProfileRecord {
	return &domain.ProfileRecord{
		UserID:        id,
		AccountStatus: domain.AccountStatusActive,
		IsVerified:    true,
		PhotoURLs:     []string{"https://cdn.example.com/" + id + ".jpg"},
		DateOfBirth:   birthDateForAge(age),
		Gender:        gender,
		Location: &domain.Location{
			Lat:     floatPtr(52.52),
			Lng:     floatPtr(13.40),
			Country: strPtr(country),
		},
		Interests: []string{"hiking"},
		Languages: []string{"en"},
	}
}

type fakeProfileReader struct {
	mu      sync.Mutex
	records []*domain.ProfileRecord
	calls   int
	failAt  int
	err     error
}

func newFakeProfileReader(records ...*domain.ProfileRecord) *fakeProfileReader {
	sorted := append([]*domain.ProfileRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })
	return &fakeProfileReader{records: sorted}
}

func (f *fakeProfileReader) ScanPage(ctx context.Context, after string, limit int) ([]*domain.ProfileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, domain.NewStoreError("scan profiles", f.err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := sort.Search(len(f.records), func(i int) bool { return f.records[i].UserID > after })
	end := start + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[start:end], nil
}

type fakePoolStore struct {
	mu      sync.Mutex
	pools   map[string]*domain.Pool
	chunks  [][]string
	failAt  int
	calls   int
	statErr error
}

func newFakePoolStore() *fakePoolStore {
	return &fakePoolStore{pools: make(map[string]*domain.Pool)}
}

var errCommit = errors.New("batch commit rejected")

func (f *fakePoolStore) ReplacePools(_ context.Context, pools []*domain.Pool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return domain.NewStoreError("replace pools", errCommit)
	}
	keys := make([]string, 0, len(pools))
	for _, p := range pools {
		cp := *p
		cp.Members = append([]domain.PoolMember(nil), p.Members...)
		f.pools[p.PoolKey] = &cp
		keys = append(keys, p.PoolKey)
	}
	f.chunks = append(f.chunks, keys)
	return nil
}

func (f *fakePoolStore) ListPoolStats(context.Context) ([]domain.PoolStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return nil, f.statErr
	}
	keys := make([]string, 0, len(f.pools))
	for k := range f.pools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]domain.PoolStat, 0, len(keys))
	for _, k := range keys {
		p := f.pools[k]
		updated := p.UpdatedAt
		out = append(out, domain.PoolStat{PoolKey: k, Count: p.Count, UpdatedAt: &updated})
	}
	return out, nil
}

func (f *fakePoolStore) GetByKey(_ context.Context, key string) (*domain.Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pools[key]
	if !ok {
		return nil, domain.ErrPoolNotFound
	}
	return p, nil
}

type countingMetrics struct {
	mu       sync.Mutex
	scanned  int
	accepted int
	dropped  int
	written  int
	excluded map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{excluded: make(map[string]int)}
}

func (m *countingMetrics) ProfilesScanned(n int) { m.mu.Lock(); m.scanned += n; m.mu.Unlock() }
func (m *countingMetrics) Excluded(r string)     { m.mu.Lock(); m.excluded[r]++; m.mu.Unlock() }
func (m *countingMetrics) MemberAccepted()       { m.mu.Lock(); m.accepted++; m.mu.Unlock() }
func (m *countingMetrics) MemberDropped()        { m.mu.Lock(); m.dropped++; m.mu.Unlock() }
func (m *countingMetrics) PoolsWritten(n int)    { m.mu.Lock(); m.written += n; m.mu.Unlock() }

type memoryStatsCache struct {
	stats       *domain.PoolStats
	gets        int
	invalidated int
}

func (c *memoryStatsCache) Get(context.Context) (*domain.PoolStats, bool, error) {
	c.gets++
	if c.stats == nil {
		return nil, false, nil
	}
	return c.stats, true, nil
}

func (c *memoryStatsCache) Set(_ context.Context, s *domain.PoolStats, _ time.Duration) error {
	c.stats = s
	return nil
}

func (c *memoryStatsCache) Invalidate(context.Context) error {
	c.stats = nil
	c.invalidated++
	return nil
}
