package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CartRepository interface {
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	AddItem(ctx context.Context, userID string, item entity.CartItem) (*entity.Cart, error)
	RemoveItems(ctx context.Context, userID string, courseIDs ...string) (*entity.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type cartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{coll: db.Collection(database.CollectionCarts)}
}

func (r *cartRepository) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	var doc models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ToCartEntity(nil, userID), nil
		}
		return nil, fmt.Errorf("failed to load cart of %s: %w", userID, err)
	}
	return ToCartEntity(&doc, userID), nil
}

// AddItem pushes the item unless the cart already holds that course. The
// guard lives in the filter, so a duplicate surfaces as a failed upsert.
func (r *cartRepository) AddItem(ctx context.Context, userID string, item entity.CartItem) (*entity.Cart, error) {
	now := time.Now().UTC()
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}

	var doc models.Cart
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": userID, "items.courseId": bson.M{"$ne": item.CourseID}},
		bson.M{
			"$push": bson.M{"items": models.CartItem{
				CourseID: item.CourseID,
				Title:    item.Title,
				Price:    item.Price,
				AddedAt:  item.AddedAt,
			}},
			"$set": bson.M{"updatedAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, entity.ErrAlreadyInCart
		}
		return nil, fmt.Errorf("failed to add %s to cart of %s: %w", item.CourseID, userID, err)
	}
	return ToCartEntity(&doc, userID), nil
}

func (r *cartRepository) RemoveItems(ctx context.Context, userID string, courseIDs ...string) (*entity.Cart, error) {
	var doc models.Cart
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"courseId": bson.M{"$in": courseIDs}}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ToCartEntity(nil, userID), nil
		}
		return nil, fmt.Errorf("failed to remove items from cart of %s: %w", userID, err)
	}
	return ToCartEntity(&doc, userID), nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart of %s: %w", userID, err)
	}
	return nil
}
