package persistent

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PurchaseRepository interface {
	// Grant records a purchase; granting the same course twice is a no-op.
	Grant(ctx context.Context, purchase *entity.Purchase) error
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Purchase, error)
	Count(ctx context.Context) (int64, error)
}

type purchaseRepository struct {
	coll *mongo.Collection
}

func NewPurchaseRepository(db *mongo.Database) PurchaseRepository {
	return &purchaseRepository{coll: db.Collection(database.CollectionPurchases)}
}

func (r *purchaseRepository) Grant(ctx context.Context, purchase *entity.Purchase) error {
	purchasedAt := purchase.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now().UTC()
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": purchase.UserID, "courseId": purchase.CourseID},
		bson.M{"$setOnInsert": bson.M{
			"paymentRef":  purchase.PaymentRef,
			"amount":      purchase.Amount,
			"purchasedAt": purchasedAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to grant course %s to %s: %w", purchase.CourseID, purchase.UserID, err)
	}
	return nil
}

func (r *purchaseRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx,
		bson.M{"userId": userID, "courseId": courseID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Purchase, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "purchasedAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []models.Purchase
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode purchases: %w", err)
	}
	purchases := make([]*entity.Purchase, 0, len(docs))
	for i := range docs {
		purchases = append(purchases, ToPurchaseEntity(&docs[i]))
	}
	return purchases, nil
}

func (r *purchaseRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
