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

type ReviewRepository interface {
	// Upsert keeps one review per user and course.
	Upsert(ctx context.Context, review *entity.Review) (*entity.Review, error)
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	ListByCourse(ctx context.Context, courseID string) ([]*entity.Review, error)
	Delete(ctx context.Context, id string) error
}

type reviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{coll: db.Collection(database.CollectionReviews)}
}

func (r *reviewRepository) Upsert(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	now := time.Now().UTC()
	var doc models.Review
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"courseId": review.CourseID, "userId": review.UserID},
		bson.M{
			"$set": bson.M{
				"userName":  review.UserName,
				"rating":    review.Rating,
				"comment":   review.Comment,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	return ToReviewEntity(&doc), nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrInvalidID
	}

	var doc models.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review %s: %w", id, err)
	}
	return ToReviewEntity(&doc), nil
}

func (r *reviewRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.Review, error) {
	filter := bson.M{}
	if courseID != "" {
		filter["courseId"] = courseID
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Review
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	reviews := make([]*entity.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, ToReviewEntity(&docs[i]))
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return entity.ErrInvalidID
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrReviewNotFound
	}
	return nil
}
