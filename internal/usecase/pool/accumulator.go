package pool

import (
	"sort"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

// Accumulator collects members per pool key for the duration of one run.
// Every live bucket is held in memory until the run is flushed.
type Accumulator struct {
	maxSize int
	members map[string][]domain.PoolMember
	total   int
}

func NewAccumulator(maxSize int) *Accumulator {
	if maxSize <= 0 || maxSize > domain.MaxPoolSize {
		maxSize = domain.MaxPoolSize
	}
	return &Accumulator{
		maxSize: maxSize,
		members: make(map[string][]domain.PoolMember),
	}
}

// Add appends m to the bucket unless the bucket is full.
// The first members scanned win; later ones are dropped.
func (a *Accumulator) Add(key string, m domain.PoolMember) bool {
	list := a.members[key]
	if len(list) >= a.maxSize {
		return false
	}
	a.members[key] = append(list, m)
	a.total++
	return true
}

// Len returns the number of buckets.
func (a *Accumulator) Len() int {
	return len(a.members)
}

// MemberCount returns the members held across all buckets.
func (a *Accumulator) MemberCount() int {
	return a.total
}

// Pools materializes the buckets in key order, stamped with updatedAt.
func (a *Accumulator) Pools(updatedAt time.Time) ([]*domain.Pool, error) {
	keys := make([]string, 0, len(a.members))
	for k := range a.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pools := make([]*domain.Pool, 0, len(keys))
	for _, key := range keys {
		country, gender, ageBucket, err := ParsePoolKey(key)
		if err != nil {
			return nil, err
		}
		members := a.members[key]
		pools = append(pools, &domain.Pool{
			PoolKey:   key,
			Country:   country,
			Gender:    gender,
			AgeBucket: ageBucket,
			Members:   members,
			Count:     len(members),
			UpdatedAt: updatedAt,
		})
	}
	return pools, nil
}
