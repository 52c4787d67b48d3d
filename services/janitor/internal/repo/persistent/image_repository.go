package persistent

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ImageRepository is the janitor's view of images and the courses that point at them.
type ImageRepository interface {
	// CountReferences counts courses whose image field holds imageID.
	CountReferences(ctx context.Context, imageID string) (int64, error)
	// Delete reports false when the image was already gone.
	Delete(ctx context.Context, imageID string) (bool, error)
	// FindOrphans lists course images uploaded before cutoff that no course references.
	FindOrphans(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

type imageRepository struct {
	images  *mongo.Collection
	courses *mongo.Collection
}

func NewImageRepository(db *mongo.Database) ImageRepository {
	return &imageRepository{
		images:  db.Collection(database.CollectionImages),
		courses: db.Collection(database.CollectionCourses),
	}
}

func (r *imageRepository) CountReferences(ctx context.Context, imageID string) (int64, error) {
	count, err := r.courses.CountDocuments(ctx, bson.M{"image": imageID})
	if err != nil {
		return 0, fmt.Errorf("failed to count references to image %s: %w", imageID, err)
	}
	return count, nil
}

func (r *imageRepository) Delete(ctx context.Context, imageID string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(imageID)
	if err != nil {
		return false, fmt.Errorf("invalid image id %q: %w", imageID, err)
	}

	res, err := r.images.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete image %s: %w", imageID, err)
	}
	return res.DeletedCount > 0, nil
}

func (r *imageRepository) FindOrphans(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"type":       models.ImageKindCourse,
			"uploadedAt": bson.M{"$lt": cutoff},
		}}},
		{{Key: "$addFields", Value: bson.M{"idStr": bson.M{"$toString": "$_id"}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollectionCourses,
			"localField":   "idStr",
			"foreignField": "image",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"_id": 1}}},
			"as":           "refs",
		}}},
		{{Key: "$match", Value: bson.M{"refs": bson.M{"$size": 0}}}},
		{{Key: "$sort", Value: bson.M{"uploadedAt": 1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.images.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned images: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode orphaned images: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.Hex())
	}
	return ids, nil
}
