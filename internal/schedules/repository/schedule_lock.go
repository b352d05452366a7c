package repository

import (
	"context"
	"time"

	"custodia/pkg/config"
	"custodia/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Schedule_locks"

// ScheduleLockRepository provides operations for advisory locks
type ScheduleLockRepository interface {
	Create(ctx context.Context, lock *model.ScheduleLock) (*model.ScheduleLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoScheduleLockRepository struct {
	collection *mongo.Collection
}

func NewScheduleLockRepository(cfg *config.Config) ScheduleLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoScheduleLockRepository) Create(ctx context.Context, lock *model.ScheduleLock) (*model.ScheduleLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoScheduleLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
