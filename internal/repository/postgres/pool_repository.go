package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"github.com/jmoiron/sqlx"
)

type poolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) repository.PoolRepository {
	return &poolRepository{db: db}
}

type poolRow struct {
	PoolKey   string    `db:"pool_key"`
	Country   string    `db:"country"`
	Gender    string    `db:"gender"`
	AgeBucket string    `db:"age_bucket"`
	Members   []byte    `db:"members"`
	Count     int       `db:"count"`
	UpdatedAt time.Time `db:"updated_at"`
}

const upsertPoolQuery = `
	INSERT INTO candidate_pools (pool_key, country, gender, age_bucket, members, count, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (pool_key) DO UPDATE
	SET country = EXCLUDED.country,
	    gender = EXCLUDED.gender,
	    age_bucket = EXCLUDED.age_bucket,
	    members = EXCLUDED.members,
	    count = EXCLUDED.count,
	    updated_at = EXCLUDED.updated_at
`

// ReplacePools overwrites every pool in one transaction.
func (r *poolRepository) ReplacePools(ctx context.Context, pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin pool batch", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, p := range pools {
		members, err := json.Marshal(membersOrEmpty(p.Members))
		if err != nil {
			return fmt.Errorf("encode members of %s: %w", p.PoolKey, err)
		}
		if _, err := tx.ExecContext(ctx, upsertPoolQuery,
			p.PoolKey, p.Country, p.Gender, p.AgeBucket, members, p.Count, p.UpdatedAt,
		); err != nil {
			return domain.NewStoreError("upsert pool "+p.PoolKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit pool batch", err)
	}
	return nil
}

func (r *poolRepository) ListPoolStats(ctx context.Context) ([]domain.PoolStat, error) {
	var stats []domain.PoolStat
	query := `SELECT pool_key, count, updated_at FROM candidate_pools ORDER BY pool_key`
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, domain.NewStoreError("list pool stats", err)
	}
	return stats, nil
}

func (r *poolRepository) GetByKey(ctx context.Context, poolKey string) (*domain.Pool, error) {
	var row poolRow
	query := `
		SELECT pool_key, country, gender, age_bucket, members, count, updated_at
		FROM candidate_pools WHERE pool_key = $1
	`
	if err := r.db.GetContext(ctx, &row, query, poolKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, domain.NewStoreError("get pool", err)
	}

	pool := &domain.Pool{
		PoolKey:   row.PoolKey,
		Country:   row.Country,
		Gender:    row.Gender,
		AgeBucket: row.AgeBucket,
		Count:     row.Count,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Members, &pool.Members); err != nil {
		return nil, fmt.Errorf("decode members of %s: %w", poolKey, err)
	}
	return pool, nil
}

func membersOrEmpty(m []domain.PoolMember) []domain.PoolMember {
	if m == nil {
		return []domain.PoolMember{}
	}
	return m
}
