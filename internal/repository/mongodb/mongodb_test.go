package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/usecase/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRawDateOfBirth(t *testing.T) {
	_, strVal, err := bson.MarshalValue("1996-03-10")
	require.NoError(t, err)
	assert.Equal(t, "1996-03-10", rawDateOfBirth(bson.RawValue{Type: bson.TypeString, Value: strVal}))

	born := time.Date(1996, 3, 10, 0, 0, 0, 0, time.UTC)
	_, dtVal, err := bson.MarshalValue(born)
	require.NoError(t, err)
	assert.Equal(t, "1996-03-10T00:00:00Z", rawDateOfBirth(bson.RawValue{Type: bson.TypeDateTime, Value: dtVal}))

	_, intVal, err := bson.MarshalValue(int32(1996))
	require.NoError(t, err)
	assert.Empty(t, rawDateOfBirth(bson.RawValue{Type: bson.TypeInt32, Value: intVal}))
	assert.Empty(t, rawDateOfBirth(bson.RawValue{}))
}

func TestProfileRepository_ScanPage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes documents", func(mt *mtest.T) {
		repo := &profileRepository{col: mt.Coll}
		expiry := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pools.profiles", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "u1"},
				{Key: "accountStatus", Value: "active"},
				{Key: "isVerified", Value: true},
				{Key: "photoUrls", Value: bson.A{"https://cdn/a.jpg"}},
				{Key: "dateOfBirth", Value: time.Date(1996, 3, 10, 0, 0, 0, 0, time.UTC)},
				{Key: "isTraveler", Value: true},
				{Key: "travelerExpiry", Value: expiry},
				{Key: "travelerLocation", Value: bson.D{
					{Key: "latitude", Value: 48.85},
					{Key: "longitude", Value: 2.35},
					{Key: "country", Value: "FR"},
				}},
				{Key: "location", Value: bson.D{{Key: "country", Value: "DE"}}},
				{Key: "gender", Value: "Female"},
				{Key: "interests", Value: bson.A{"hiking"}},
			},
			bson.D{
				{Key: "_id", Value: "u2"},
				{Key: "dateOfBirth", Value: "02.01.1990"},
				{Key: "verificationStatus", Value: "approved"},
			},
		))

		recs, err := repo.ScanPage(context.Background(), "u0", 500)
		require.NoError(mt, err)
		require.Len(mt, recs, 2)

		first := recs[0]
		assert.Equal(mt, "u1", first.UserID)
		assert.True(mt, first.IsVerified)
		assert.Equal(mt, []string{"https://cdn/a.jpg"}, first.PhotoURLs)
		assert.Equal(mt, "1996-03-10T00:00:00Z", first.DateOfBirth)
		require.NotNil(mt, first.TravelerLocation)
		assert.Equal(mt, "FR", *first.TravelerLocation.Country)
		assert.InDelta(mt, 48.85, *first.TravelerLocation.Lat, 1e-9)
		require.NotNil(mt, first.Location)
		assert.Nil(mt, first.Location.Lat)
		require.NotNil(mt, first.TravelerExpiry)
		assert.True(mt, expiry.Equal(*first.TravelerExpiry))

		now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
		candidate, exclusion := pool.Evaluate(first, now)
		assert.Equal(mt, pool.Included, exclusion)
		require.NotNil(mt, candidate)
		assert.Equal(mt, "FR", candidate.Country)
		assert.Equal(mt, 30, candidate.Member.Age)

		second := recs[1]
		assert.Equal(mt, "02.01.1990", second.DateOfBirth)
		assert.Equal(mt, "approved", *second.VerificationStatus)
		assert.Nil(mt, second.Location)
	})

	mt.Run("rejects non-positive limit", func(mt *mtest.T) {
		repo := &profileRepository{col: mt.Coll}
		_, err := repo.ScanPage(context.Background(), "", 0)
		assert.ErrorIs(mt, err, domain.ErrInvalidPageSize)
	})

	mt.Run("wraps driver errors", func(mt *mtest.T) {
		repo := &profileRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Message: "interrupted at shutdown",
		}))

		_, err := repo.ScanPage(context.Background(), "", 500)
		var storeErr *domain.StoreError
		assert.ErrorAs(mt, err, &storeErr)
	})
}

func TestPoolRepository_Reads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	updated := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	mt.Run("list stats", func(mt *mtest.T) {
		repo := &poolRepository{client: mt.Client, col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pools.candidatePools", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "DE_Female_25-34"}, {Key: "poolKey", Value: "DE_Female_25-34"}, {Key: "count", Value: 12}, {Key: "updatedAt", Value: updated}},
			bson.D{{Key: "_id", Value: "US_Male_18-24"}, {Key: "poolKey", Value: "US_Male_18-24"}, {Key: "count", Value: 5000}},
		))

		stats, err := repo.ListPoolStats(context.Background())
		require.NoError(mt, err)
		require.Len(mt, stats, 2)
		assert.Equal(mt, 12, stats[0].Count)
		require.NotNil(mt, stats[0].UpdatedAt)
		assert.True(mt, updated.Equal(*stats[0].UpdatedAt))
		assert.Nil(mt, stats[1].UpdatedAt)
	})

	mt.Run("list stats on empty collection", func(mt *mtest.T) {
		repo := &poolRepository{client: mt.Client, col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pools.candidatePools", mtest.FirstBatch))

		stats, err := repo.ListPoolStats(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, stats)
		assert.Empty(mt, stats)
	})

	mt.Run("get by key", func(mt *mtest.T) {
		repo := &poolRepository{client: mt.Client, col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pools.candidatePools", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "DE_Female_25-34"},
				{Key: "poolKey", Value: "DE_Female_25-34"},
				{Key: "country", Value: "DE"},
				{Key: "gender", Value: "Female"},
				{Key: "ageBucket", Value: "25-34"},
				{Key: "members", Value: bson.A{
					bson.D{{Key: "userId", Value: "u1"}, {Key: "age", Value: 30}, {Key: "hasPhotos", Value: true}},
				}},
				{Key: "count", Value: 1},
				{Key: "updatedAt", Value: updated},
			},
		))

		got, err := repo.GetByKey(context.Background(), "DE_Female_25-34")
		require.NoError(mt, err)
		assert.Equal(mt, "DE_Female_25-34", got.PoolKey)
		assert.Equal(mt, "25-34", got.AgeBucket)
		require.Len(mt, got.Members, 1)
		assert.Equal(mt, 30, got.Members[0].Age)
		assert.True(mt, got.Members[0].HasPhotos)
	})

	mt.Run("get missing key", func(mt *mtest.T) {
		repo := &poolRepository{client: mt.Client, col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pools.candidatePools", mtest.FirstBatch))

		_, err := repo.GetByKey(context.Background(), "XX_Male_18-24")
		assert.ErrorIs(mt, err, domain.ErrPoolNotFound)
	})

	mt.Run("empty batch is a no-op", func(mt *mtest.T) {
		repo := &poolRepository{client: mt.Client, col: mt.Coll}
		assert.NoError(mt, repo.ReplacePools(context.Background(), nil))
	})
}
