package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertieserrors "qota/internal/properties/errors"
	"qota/pkg/config"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MembershipCollectionName = "Memberships"
)

type mongoMembershipRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type MembershipRepository interface {
	Create(ctx context.Context, membership *model.Membership) error
	FindByID(ctx context.Context, id string) (*model.Membership, error)
	FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Membership, error)
	CountByProperty(ctx context.Context, propertyID string) (int64, error)
	Update(ctx context.Context, id string, membership *model.Membership) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	DebitBalance(ctx context.Context, id string, days float64) error
	CreditBalance(ctx context.Context, id string, days float64) error
}

func NewMongoMembershipRepository(cfg *config.Config) MembershipRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMembershipRepository{
		cfg:        cfg,
		collection: db.Collection(MembershipCollectionName),
	}
}

func (r *mongoMembershipRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoMembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	membership.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, membership)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		membership.ID = oid.Hex()
	}

	return nil
}

func (r *mongoMembershipRepository) FindByID(ctx context.Context, id string) (*model.Membership, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidMembershipID, id)
	}

	var membership model.Membership
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&membership)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", propertieserrors.ErrMembershipNotFound, id)
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return &membership, nil
}

func (r *mongoMembershipRepository) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Membership, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "member_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"property_id": propertyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer cursor.Close(ctx)

	var memberships []*model.Membership
	if err = cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}

	return memberships, nil
}

func (r *mongoMembershipRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"property_id": propertyID})
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

func (r *mongoMembershipRepository) Update(ctx context.Context, id string, membership *model.Membership) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidMembershipID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"member_name":    membership.MemberName,
			"member_phone":   membership.MemberPhone,
			"fraction_count": membership.FractionCount,
			"role":           membership.Role,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrMembershipNotFound, id)
	}

	return result, nil
}

func (r *mongoMembershipRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidMembershipID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", propertieserrors.ErrMembershipNotFound, id)
	}

	return nil
}

// DebitBalance atomically subtracts days from the usage-day balance.
// The filter requires the current balance to still cover the debit, so
// a concurrent debit that drained the balance surfaces here as
// ErrBalanceConflict instead of driving the balance negative.
func (r *mongoMembershipRepository) DebitBalance(ctx context.Context, id string, days float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidMembershipID, id)
	}

	filter := bson.M{
		"_id":                  objectID,
		"current_balance_days": bson.M{"$gte": days},
	}
	update := bson.M{
		"$inc": bson.M{"current_balance_days": -days},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: membership %s, debit %.2f", propertieserrors.ErrBalanceConflict, id, days)
	}

	return nil
}

// CreditBalance atomically restores days to the usage-day balance.
func (r *mongoMembershipRepository) CreditBalance(ctx context.Context, id string, days float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidMembershipID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"current_balance_days": days}},
	)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", propertieserrors.ErrMembershipNotFound, id)
	}

	return nil
}
