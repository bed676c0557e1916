package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var profileColumns = []string{
	"user_id", "account_status", "is_verified", "verification_status", "photo_urls",
	"is_incognito", "incognito_expiry", "date_of_birth",
	"is_traveler", "traveler_expiry", "traveler_lat", "traveler_lng", "traveler_country",
	"location_lat", "location_lng", "country", "gender",
	"interests", "languages",
	"is_boosted", "boost_expiry", "is_online", "last_seen", "sexual_orientation",
}

func TestProfileRepository_ScanPage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	expiry := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(profileColumns).
		AddRow("u1", "active", true, nil, "{https://cdn/a.jpg}",
			false, nil, "1996-03-10",
			true, expiry, 48.85, 2.35, "FR",
			52.52, 13.40, "DE", "Female",
			"{hiking,jazz}", "{en,de}",
			false, nil, true, nil, "straight").
		AddRow("u2", nil, nil, "approved", "{}",
			nil, nil, nil,
			nil, nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil,
			nil, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT user_id, account_status .* FROM profiles\s+WHERE user_id > \$1\s+ORDER BY user_id\s+LIMIT \$2`).
		WithArgs("u0", 500).
		WillReturnRows(rows)

	recs, err := repo.ScanPage(context.Background(), "u0", 500)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "active", first.AccountStatus)
	assert.True(t, first.IsVerified)
	assert.Equal(t, []string{"https://cdn/a.jpg"}, first.PhotoURLs)
	assert.Equal(t, "1996-03-10", first.DateOfBirth)
	assert.True(t, first.IsTraveler)
	require.NotNil(t, first.TravelerExpiry)
	assert.True(t, expiry.Equal(*first.TravelerExpiry))
	require.NotNil(t, first.TravelerLocation)
	assert.Equal(t, "FR", *first.TravelerLocation.Country)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 52.52, *first.Location.Lat, 1e-9)
	assert.Equal(t, []string{"hiking", "jazz"}, first.Interests)
	assert.Equal(t, "straight", *first.SexualOrientation)

	second := recs[1]
	assert.Empty(t, second.AccountStatus)
	assert.False(t, second.IsVerified)
	assert.Equal(t, "approved", *second.VerificationStatus)
	assert.Empty(t, second.PhotoURLs)
	assert.Empty(t, second.DateOfBirth)
	assert.Nil(t, second.Location)
	assert.Nil(t, second.TravelerLocation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_ScanPageErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	_, err := repo.ScanPage(context.Background(), "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPageSize)

	mock.ExpectQuery(`FROM profiles`).WillReturnError(errors.New("connection reset"))
	_, err = repo.ScanPage(context.Background(), "", 500)
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "scan profiles", storeErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testPools() []*domain.Pool {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	return []*domain.Pool{
		{
			PoolKey: "DE_Female_25-34", Country: "DE", Gender: "Female", AgeBucket: "25-34",
			Members: []domain.PoolMember{{UserID: "u1", Age: 30, HasPhotos: true}},
			Count:   1, UpdatedAt: now,
		},
		{
			PoolKey: "FR_Male_18-24", Country: "FR", Gender: "Male", AgeBucket: "18-24",
			Count: 0, UpdatedAt: now,
		},
	}
}

func TestPoolRepository_ReplacePoolsCommitsOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPoolRepository(db)
	pools := testPools()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidate_pools .* ON CONFLICT \(pool_key\) DO UPDATE`).
		WithArgs("DE_Female_25-34", "DE", "Female", "25-34", sqlmock.AnyArg(), 1, pools[0].UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_pools`).
		WithArgs("FR_Male_18-24", "FR", "Male", "18-24", []byte("[]"), 0, pools[1].UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplacePools(context.Background(), pools))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_ReplacePoolsRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPoolRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidate_pools`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_pools`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.ReplacePools(context.Background(), testPools())
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, storeErr.Op, "FR_Male_18-24")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_ReplacePoolsEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPoolRepository(db)

	require.NoError(t, repo.ReplacePools(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_ListPoolStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPoolRepository(db)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT pool_key, count, updated_at FROM candidate_pools ORDER BY pool_key`).
		WillReturnRows(sqlmock.NewRows([]string{"pool_key", "count", "updated_at"}).
			AddRow("DE_Female_25-34", 12, now).
			AddRow("US_Male_18-24", 5000, now))

	stats, err := repo.ListPoolStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "DE_Female_25-34", stats[0].PoolKey)
	assert.Equal(t, 5000, stats[1].Count)
	require.NotNil(t, stats[1].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_GetByKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPoolRepository(db)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cols := []string{"pool_key", "country", "gender", "age_bucket", "members", "count", "updated_at"}
	mock.ExpectQuery(`FROM candidate_pools WHERE pool_key = \$1`).
		WithArgs("DE_Female_25-34").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"DE_Female_25-34", "DE", "Female", "25-34",
			[]byte(`[{"userId":"u1","age":30,"lat":52.5,"lng":13.4,"interests":["hiking"],"languages":["en"],"isVerified":true,"isBoosted":false,"boostExpiry":null,"isOnline":false,"lastActive":null,"sexualOrientation":null,"hasPhotos":true}]`),
			1, now,
		))

	pool, err := repo.GetByKey(context.Background(), "DE_Female_25-34")
	require.NoError(t, err)
	assert.Equal(t, "Female", pool.Gender)
	require.Len(t, pool.Members, 1)
	assert.Equal(t, "u1", pool.Members[0].UserID)
	assert.Equal(t, []string{"hiking"}, pool.Members[0].Interests)
	assert.Nil(t, pool.Members[0].BoostExpiry)

	mock.ExpectQuery(`FROM candidate_pools WHERE pool_key = \$1`).
		WithArgs("XX_Male_18-24").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.GetByKey(context.Background(), "XX_Male_18-24")
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
