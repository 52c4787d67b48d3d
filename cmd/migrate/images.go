package main

import (
	"context"
	"fmt"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/dataurl"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type normalizeStats struct {
	ImagesRewritten int
	CoursesMarked   int
}

type brokenCourse struct {
	ID       bson.ObjectID
	CourseID string
	Title    string
	Image    string
}

// normalizeImages prefixes bare base64 payloads with their data URL header and
// marks courses whose image resolves to a stored Image. Legacy paths are kept.
func normalizeImages(ctx context.Context, db *database.MongoDB, dryRun bool, log *logger.Logger) (*normalizeStats, error) {
	images := db.Collection(database.CollectionImages)
	courses := db.Collection(database.CollectionCourses)
	stats := &normalizeStats{}

	cursor, err := images.Find(ctx, bson.M{
		"data": bson.M{"$exists": true, "$ne": "", "$not": bson.Regex{Pattern: "^data:"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan images: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var img models.Image
		if err := cursor.Decode(&img); err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		stats.ImagesRewritten++
		if dryRun {
			log.Info("Would normalize image %s (%s)", img.ID.Hex(), img.MimeType)
			continue
		}
		_, err := images.UpdateOne(ctx,
			bson.M{"_id": img.ID},
			bson.M{"$set": bson.M{"data": dataurl.Normalize(img.Data, img.MimeType)}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize image %s: %w", img.ID.Hex(), err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	courseCursor, err := courses.Find(ctx, bson.M{
		"image":     bson.M{"$exists": true, "$ne": ""},
		"imageType": bson.M{"$ne": models.ImageTypeBase64},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan courses: %w", err)
	}
	defer courseCursor.Close(ctx)

	for courseCursor.Next(ctx) {
		var course models.Course
		if err := courseCursor.Decode(&course); err != nil {
			return nil, fmt.Errorf("failed to decode course: %w", err)
		}
		ref, ok := course.ImageRef()
		if !ok {
			continue
		}
		exists, err := images.CountDocuments(ctx, bson.M{"_id": ref})
		if err != nil {
			return nil, fmt.Errorf("failed to look up image %s: %w", ref.Hex(), err)
		}
		if exists == 0 {
			continue
		}

		stats.CoursesMarked++
		if dryRun {
			log.Info("Would mark course %s as base64", course.ID.Hex())
			continue
		}
		_, err = courses.UpdateOne(ctx,
			bson.M{"_id": course.ID},
			bson.M{"$set": bson.M{"imageType": models.ImageTypeBase64, "imageUrl": models.ImageURL(ref)}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to mark course %s: %w", course.ID.Hex(), err)
		}
	}
	return stats, courseCursor.Err()
}

// checkImages lists base64 courses whose image is gone and, with repair,
// clears their image fields.
func checkImages(ctx context.Context, db *database.MongoDB, repair bool, log *logger.Logger) ([]brokenCourse, error) {
	images := db.Collection(database.CollectionImages)
	courses := db.Collection(database.CollectionCourses)

	cursor, err := courses.Find(ctx, bson.M{"imageType": models.ImageTypeBase64})
	if err != nil {
		return nil, fmt.Errorf("failed to scan courses: %w", err)
	}
	defer cursor.Close(ctx)

	var broken []brokenCourse
	for cursor.Next(ctx) {
		var course models.Course
		if err := cursor.Decode(&course); err != nil {
			return nil, fmt.Errorf("failed to decode course: %w", err)
		}

		if ref, ok := course.ImageRef(); ok {
			n, err := images.CountDocuments(ctx, bson.M{"_id": ref})
			if err != nil {
				return nil, fmt.Errorf("failed to look up image %s: %w", ref.Hex(), err)
			}
			if n > 0 {
				continue
			}
		}
		broken = append(broken, brokenCourse{ID: course.ID, CourseID: course.CourseID, Title: course.Title, Image: course.Image})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if !repair || dryRun {
		return broken, nil
	}
	for _, b := range broken {
		_, err := courses.UpdateOne(ctx,
			bson.M{"_id": b.ID, "image": b.Image},
			bson.M{"$unset": bson.M{"image": "", "imageType": "", "imageUrl": ""}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to repair course %s: %w", b.ID.Hex(), err)
		}
		log.Info("Cleared dangling image reference on course %s", b.ID.Hex())
	}
	return broken, nil
}
