package mongodb

import (
	"context"
	"errors"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
	"github.com/gdugdh24/mpit2026-pools/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const poolsCollection = "candidatePools"

type poolRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewPoolRepository needs a replica set or sharded cluster: each batch runs
// inside a multi-document transaction.
func NewPoolRepository(client *mongo.Client, db *mongo.Database) repository.PoolRepository {
	return &poolRepository{client: client, col: db.Collection(poolsCollection)}
}

type poolDoc struct {
	ID          string `bson:"_id"`
	domain.Pool `bson:",inline"`
}

func (r *poolRepository) ReplacePools(ctx context.Context, pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(pools))
	for _, p := range pools {
		doc := poolDoc{ID: p.PoolKey, Pool: *p}
		if doc.Members == nil {
			doc.Members = []domain.PoolMember{}
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.PoolKey}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return domain.NewStoreError("start pool batch", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.col.BulkWrite(sc, models, options.BulkWrite().SetOrdered(true))
	})
	if err != nil {
		return domain.NewStoreError("commit pool batch", err)
	}
	return nil
}

func (r *poolRepository) ListPoolStats(ctx context.Context) ([]domain.PoolStat, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{
			"poolKey":   1,
			"count":     1,
			"updatedAt": 1,
		})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, domain.NewStoreError("list pool stats", err)
	}
	defer cur.Close(ctx)

	stats := []domain.PoolStat{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, domain.NewStoreError("list pool stats", err)
	}
	return stats, nil
}

func (r *poolRepository) GetByKey(ctx context.Context, poolKey string) (*domain.Pool, error) {
	var doc poolDoc
	err := r.col.FindOne(ctx, bson.M{"_id": poolKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPoolNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("get pool", err)
	}
	return &doc.Pool, nil
}
