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

type CourseRepository interface {
	// List and GetByRef embed imageData when the image reference resolves.
	List(ctx context.Context) ([]*entity.Course, error)
	GetByRef(ctx context.Context, ref string) (*entity.Course, error)
	FindByRef(ctx context.Context, ref string) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Course, error)
	Create(ctx context.Context, in entity.CourseInput) (*entity.Course, error)
	Update(ctx context.Context, id string, in entity.CourseInput) (*entity.Course, error)
	Delete(ctx context.Context, id string) (*entity.Course, error)
	// SwapImage points the course at imageID and returns the course as it was before.
	SwapImage(ctx context.Context, id, imageID string) (*entity.Course, error)
	// ClearImage removes the image reference and returns the course as it was before.
	ClearImage(ctx context.Context, id string) (*entity.Course, error)
	CountImageReferences(ctx context.Context, imageID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type courseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) CourseRepository {
	return &courseRepository{coll: db.Collection(database.CollectionCourses)}
}

// CourseRefFilters lists the filters a course reference is tried against, in
// order: the external course_id, then the _id when ref is an ObjectID hex.
func CourseRefFilters(ref string) []bson.M {
	filters := []bson.M{{"course_id": ref}}
	if oid, err := bson.ObjectIDFromHex(ref); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}
	return filters
}

// ImageLookupStages joins the referenced Image onto each course as imageData.
// Empty and legacy path references convert to null and never match.
func ImageLookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"imageObjId": bson.M{"$convert": bson.M{
				"input":   "$image",
				"to":      "objectId",
				"onError": nil,
				"onNull":  nil,
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollectionImages,
			"localField":   "imageObjId",
			"foreignField": "_id",
			"as":           "imageDocs",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"imageData": bson.M{"$arrayElemAt": bson.A{"$imageDocs", 0}},
		}}},
		{{Key: "$project", Value: bson.M{
			"imageObjId":           0,
			"imageDocs":            0,
			"imageData.type":       0,
			"imageData.courseId":   0,
			"imageData.uploadedAt": 0,
			"imageData.uploadedBy": 0,
		}}},
	}
}

func (r *courseRepository) aggregate(ctx context.Context, match bson.M, limit int64) ([]*entity.Course, error) {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}})
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, ImageLookupStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate courses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Course
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}

	courses := make([]*entity.Course, 0, len(docs))
	for i := range docs {
		courses = append(courses, ToCourseEntity(&docs[i]))
	}
	return courses, nil
}

func (r *courseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	return r.aggregate(ctx, nil, 0)
}

func (r *courseRepository) GetByRef(ctx context.Context, ref string) (*entity.Course, error) {
	for _, filter := range CourseRefFilters(ref) {
		courses, err := r.aggregate(ctx, filter, 1)
		if err != nil {
			return nil, err
		}
		if len(courses) > 0 {
			return courses[0], nil
		}
	}
	return nil, entity.ErrCourseNotFound
}

func (r *courseRepository) FindByRef(ctx context.Context, ref string) (*entity.Course, error) {
	for _, filter := range CourseRefFilters(ref) {
		var doc models.Course
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if err == nil {
			return ToCourseEntity(&doc), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to find course %s: %w", ref, err)
		}
	}
	return nil, entity.ErrCourseNotFound
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Course, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := bson.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*entity.Course{}, nil
	}
	return r.aggregate(ctx, bson.M{"_id": bson.M{"$in": oids}}, 0)
}

func (r *courseRepository) Create(ctx context.Context, in entity.CourseInput) (*entity.Course, error) {
	doc := &models.Course{}
	applyCourseInput(doc, in)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, entity.ErrCourseExists
		}
		return nil, fmt.Errorf("failed to insert course: %w", err)
	}
	return ToCourseEntity(doc), nil
}

func applyCourseInput(doc *models.Course, in entity.CourseInput) {
	if in.CourseID != nil {
		doc.CourseID = *in.CourseID
	}
	if in.Title != nil {
		doc.Title = *in.Title
	}
	if in.Description != nil {
		doc.Description = *in.Description
	}
	if in.Price != nil {
		doc.Price = *in.Price
	}
	if in.Metadata != nil {
		doc.Metadata = bson.M(in.Metadata)
	}
	if in.Lessons != nil {
		doc.Lessons = ToLessonModels(in.Lessons)
	}
}

func (r *courseRepository) Update(ctx context.Context, id string, in entity.CourseInput) (*entity.Course, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrCourseNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.CourseID != nil {
		set["course_id"] = *in.CourseID
	}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Metadata != nil {
		set["metadata"] = bson.M(in.Metadata)
	}
	if in.Lessons != nil {
		set["lessons"] = ToLessonModels(in.Lessons)
	}

	var doc models.Course
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrCourseNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, entity.ErrCourseExists
		}
		return nil, fmt.Errorf("failed to update course %s: %w", id, err)
	}
	return ToCourseEntity(&doc), nil
}

func (r *courseRepository) Delete(ctx context.Context, id string) (*entity.Course, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrCourseNotFound
	}

	var doc models.Course
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to delete course %s: %w", id, err)
	}
	return ToCourseEntity(&doc), nil
}

func (r *courseRepository) SwapImage(ctx context.Context, id, imageID string) (*entity.Course, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrCourseNotFound
	}
	imageOID, err := bson.ObjectIDFromHex(imageID)
	if err != nil {
		return nil, entity.ErrInvalidImageID
	}

	update := bson.M{"$set": bson.M{
		"image":     imageID,
		"imageType": models.ImageTypeBase64,
		"imageUrl":  models.ImageURL(imageOID),
		"updatedAt": time.Now().UTC(),
	}}
	return r.findAndModifyBefore(ctx, oid, update)
}

func (r *courseRepository) ClearImage(ctx context.Context, id string) (*entity.Course, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrCourseNotFound
	}

	filter := bson.M{"_id": oid, "image": bson.M{"$nin": bson.A{nil, ""}}}
	update := bson.M{
		"$unset": bson.M{"image": "", "imageType": "", "imageUrl": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc models.Course
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the course vanished or another request cleared it first.
			return nil, entity.ErrNoImage
		}
		return nil, fmt.Errorf("failed to clear image of course %s: %w", id, err)
	}
	return ToCourseEntity(&doc), nil
}

func (r *courseRepository) findAndModifyBefore(ctx context.Context, oid bson.ObjectID, update bson.M) (*entity.Course, error) {
	var doc models.Course
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course %s: %w", oid.Hex(), err)
	}
	return ToCourseEntity(&doc), nil
}

func (r *courseRepository) CountImageReferences(ctx context.Context, imageID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"image": imageID})
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
