package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	penaltieserrors "qota/internal/penalties/errors"
	"qota/pkg/config"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Penalties"
)

type mongoPenaltyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type PenaltyRepository interface {
	Create(ctx context.Context, penalty *model.Penalty) error
	FindByID(ctx context.Context, id string) (*model.Penalty, error)
	FindByMembership(ctx context.Context, membershipID string, limit int, offset int64) ([]*model.Penalty, error)
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
	ExistsForReservation(ctx context.Context, reservationID, reason string) (bool, error)
}

func NewMongoPenaltyRepository(cfg *config.Config) PenaltyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPenaltyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPenaltyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPenaltyRepository) Create(ctx context.Context, penalty *model.Penalty) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	penalty.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, penalty)
	if err != nil {
		return fmt.Errorf("failed to create penalty: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		penalty.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPenaltyRepository) FindByID(ctx context.Context, id string) (*model.Penalty, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", penaltieserrors.ErrInvalidID, id)
	}

	var penalty model.Penalty
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&penalty)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, penaltieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find penalty: %w", err)
	}

	return &penalty, nil
}

func (r *mongoPenaltyRepository) FindByMembership(ctx context.Context, membershipID string, limit int, offset int64) ([]*model.Penalty, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"membership_id": membershipID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find penalties: %w", err)
	}
	defer cursor.Close(ctx)

	penalties := []*model.Penalty{}
	if err := cursor.All(ctx, &penalties); err != nil {
		return nil, fmt.Errorf("failed to decode penalties: %w", err)
	}

	return penalties, nil
}

func (r *mongoPenaltyRepository) CountByMembership(ctx context.Context, membershipID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"membership_id": membershipID})
	if err != nil {
		return 0, fmt.Errorf("failed to count penalties: %w", err)
	}
	return count, nil
}

// ExistsForReservation is the idempotency check for event redelivery.
// One reservation produces at most one penalty per reason.
func (r *mongoPenaltyRepository) ExistsForReservation(ctx context.Context, reservationID, reason string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"reservation_id": reservationID,
		"reason":         reason,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check for existing penalty: %w", err)
	}
	return count > 0, nil
}
