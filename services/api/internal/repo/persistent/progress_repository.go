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

type ProgressRepository interface {
	Get(ctx context.Context, userID, courseID string) (*entity.Progress, error)
	// CompleteLesson adds lessonID once and stores the recomputed percent.
	CompleteLesson(ctx context.Context, userID, courseID, lessonID string, percent func(completed int) float64) (*entity.Progress, error)
	// RecordQuizAttempt stores the latest score and bumps the attempt counter.
	RecordQuizAttempt(ctx context.Context, userID, courseID, quizID string, score, total int, passed bool) (*entity.QuizResult, error)
}

type progressRepository struct {
	coll *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) ProgressRepository {
	return &progressRepository{coll: db.Collection(database.CollectionProgress)}
}

func progressKey(userID, courseID string) bson.M {
	return bson.M{"userId": userID, "courseId": courseID}
}

func (r *progressRepository) Get(ctx context.Context, userID, courseID string) (*entity.Progress, error) {
	var doc models.Progress
	if err := r.coll.FindOne(ctx, progressKey(userID, courseID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ToProgressEntity(nil, userID, courseID), nil
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return ToProgressEntity(&doc, userID, courseID), nil
}

func (r *progressRepository) CompleteLesson(ctx context.Context, userID, courseID, lessonID string, percent func(completed int) float64) (*entity.Progress, error) {
	now := time.Now().UTC()
	var doc models.Progress
	err := r.coll.FindOneAndUpdate(ctx,
		progressKey(userID, courseID),
		bson.M{
			"$addToSet": bson.M{"completedLessons": lessonID},
			"$set":      bson.M{"updatedAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to complete lesson %s: %w", lessonID, err)
	}

	doc.Percent = percent(len(doc.CompletedLessons))
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{"percent": doc.Percent}}); err != nil {
		return nil, fmt.Errorf("failed to store progress percent: %w", err)
	}
	return ToProgressEntity(&doc, userID, courseID), nil
}

func (r *progressRepository) RecordQuizAttempt(ctx context.Context, userID, courseID, quizID string, score, total int, passed bool) (*entity.QuizResult, error) {
	now := time.Now().UTC()
	prefix := "quizResults." + quizID + "."

	var doc models.Progress
	err := r.coll.FindOneAndUpdate(ctx,
		progressKey(userID, courseID),
		bson.M{
			"$set": bson.M{
				prefix + "score":         score,
				prefix + "total":         total,
				prefix + "passed":        passed,
				prefix + "lastAttemptAt": now,
				"updatedAt":              now,
			},
			"$inc":         bson.M{prefix + "attempts": 1},
			"$setOnInsert": bson.M{"completedLessons": bson.A{}, "percent": 0},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to record quiz %s: %w", quizID, err)
	}

	stored := doc.QuizResults[quizID]
	return &entity.QuizResult{
		Score:         stored.Score,
		Total:         stored.Total,
		Passed:        stored.Passed,
		Attempts:      stored.Attempts,
		LastAttemptAt: stored.LastAttemptAt,
	}, nil
}
