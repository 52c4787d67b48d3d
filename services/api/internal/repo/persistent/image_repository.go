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
)

type ImageRepository interface {
	Create(ctx context.Context, image *entity.Image) (*entity.Image, error)
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type imageRepository struct {
	coll *mongo.Collection
}

func NewImageRepository(db *mongo.Database) ImageRepository {
	return &imageRepository{coll: db.Collection(database.CollectionImages)}
}

func (r *imageRepository) Create(ctx context.Context, image *entity.Image) (*entity.Image, error) {
	doc := ToImageModel(image)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}
	return ToImageEntity(doc), nil
}

func (r *imageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrInvalidImageID
	}

	var doc models.Image
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image %s: %w", id, err)
	}
	return ToImageEntity(&doc), nil
}

func (r *imageRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, entity.ErrInvalidImageID
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}
