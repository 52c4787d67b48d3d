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

type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) (*entity.Quiz, error)
	GetByID(ctx context.Context, id string) (*entity.Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]*entity.Quiz, error)
}

type quizRepository struct {
	coll *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) QuizRepository {
	return &quizRepository{coll: db.Collection(database.CollectionQuizzes)}
}

func (r *quizRepository) Create(ctx context.Context, quiz *entity.Quiz) (*entity.Quiz, error) {
	doc := ToQuizModel(quiz)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert quiz: %w", err)
	}
	return ToQuizEntity(doc), nil
}

func (r *quizRepository) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrQuizNotFound
	}

	var doc models.Quiz
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to find quiz %s: %w", id, err)
	}
	return ToQuizEntity(&doc), nil
}

func (r *quizRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.Quiz, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"courseId": courseID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes of %s: %w", courseID, err)
	}
	defer cursor.Close(ctx)

	var docs []models.Quiz
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode quizzes: %w", err)
	}
	quizzes := make([]*entity.Quiz, 0, len(docs))
	for i := range docs {
		quizzes = append(quizzes, ToQuizEntity(&docs[i]))
	}
	return quizzes, nil
}
