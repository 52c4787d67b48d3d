package main

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type sampleCourse struct {
	Course models.Course
	Quiz   *models.Quiz
}

type seedStats struct {
	CoursesCreated int
	CoursesSkipped int
	QuizzesCreated int
}

type seeder struct {
	db  *mongo.Database
	now func() time.Time
	log *logger.Logger
}

func newSeeder(db *mongo.Database, log *logger.Logger) *seeder {
	return &seeder{db: db, now: time.Now, log: log}
}

// seedAdmin upserts the admin by email and promotes an existing account.
func (s *seeder) seedAdmin(ctx context.Context, email, name, uid string) (bool, error) {
	now := s.now().UTC()
	insert := bson.M{
		"_id":       bson.NewObjectID(),
		"email":     email,
		"name":      name,
		"createdAt": now,
	}
	if uid != "" {
		insert["uid"] = uid
	}

	res, err := s.db.Collection(database.CollectionUsers).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$setOnInsert": insert,
			"$set":         bson.M{"role": models.RoleAdmin, "updatedAt": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert admin %s: %w", email, err)
	}
	return res.UpsertedCount > 0, nil
}

// seedCourses inserts each course unless its course_id exists; quizzes are
// only added alongside a newly created course.
func (s *seeder) seedCourses(ctx context.Context, samples []sampleCourse) (*seedStats, error) {
	courses := s.db.Collection(database.CollectionCourses)
	quizzes := s.db.Collection(database.CollectionQuizzes)
	stats := &seedStats{}

	for _, sample := range samples {
		course := sample.Course
		course.BeforeInsert(s.now().UTC())

		res, err := courses.UpdateOne(ctx,
			bson.M{"course_id": course.CourseID},
			bson.M{"$setOnInsert": course},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to seed course %s: %w", course.CourseID, err)
		}
		if res.UpsertedCount == 0 {
			stats.CoursesSkipped++
			s.log.Debug("Course %s already exists", course.CourseID)
			continue
		}
		stats.CoursesCreated++

		if sample.Quiz == nil {
			continue
		}
		quiz := *sample.Quiz
		quiz.CourseID = course.ID.Hex()
		quiz.BeforeInsert(s.now().UTC())
		if _, err := quizzes.InsertOne(ctx, quiz); err != nil {
			return nil, fmt.Errorf("failed to seed quiz for %s: %w", course.CourseID, err)
		}
		stats.QuizzesCreated++
	}
	return stats, nil
}

func sampleCourses() []sampleCourse {
	return []sampleCourse{
		{
			Course: models.Course{
				CourseID:    "financial-literacy-101",
				Title:       "Financial Literacy 101",
				Description: "Budgets, savings and the habits that keep them going.",
				Price:       0,
				Metadata:    bson.M{"level": "beginner", "durationHours": 2},
				Lessons: []models.Lesson{
					{LessonID: "fl-1", Title: "Where your money goes", Order: 1},
					{LessonID: "fl-2", Title: "Building a budget", Order: 2},
					{LessonID: "fl-3", Title: "An emergency fund", Order: 3},
				},
			},
			Quiz: &models.Quiz{
				Title: "Budgeting basics",
				Questions: []models.Question{
					{Prompt: "What should an emergency fund cover?", Options: []string{"A holiday", "Three to six months of expenses", "A new phone"}, AnswerIndex: 1},
					{Prompt: "Which comes first in a budget?", Options: []string{"Income", "Wants"}, AnswerIndex: 0},
				},
			},
		},
		{
			Course: models.Course{
				CourseID:    "intro-to-investing",
				Title:       "Introduction to Investing",
				Description: "Risk, return and diversification without the jargon.",
				Price:       5000,
				Metadata:    bson.M{"level": "beginner", "durationHours": 4},
				Lessons: []models.Lesson{
					{LessonID: "ii-1", Title: "Risk and return", Order: 1},
					{LessonID: "ii-2", Title: "Stocks and bonds", Order: 2},
					{LessonID: "ii-3", Title: "Diversification", Order: 3},
					{LessonID: "ii-4", Title: "Index funds", Order: 4},
				},
			},
			Quiz: &models.Quiz{
				Title:    "Investing fundamentals",
				PassMark: 75,
				Questions: []models.Question{
					{Prompt: "Diversification mainly reduces...", Options: []string{"Fees", "Unsystematic risk", "Taxes"}, AnswerIndex: 1},
					{Prompt: "A bond is a...", Options: []string{"Loan to an issuer", "Share of ownership"}, AnswerIndex: 0},
					{Prompt: "Index funds track...", Options: []string{"A single company", "A market index"}, AnswerIndex: 1},
					{Prompt: "Higher expected return usually means...", Options: []string{"Lower risk", "Higher risk"}, AnswerIndex: 1},
				},
			},
		},
		{
			Course: models.Course{
				CourseID:    "small-business-bookkeeping",
				Title:       "Small Business Bookkeeping",
				Description: "Keep clean books, track cash flow and get ready for tax season.",
				Price:       7500,
				Metadata:    bson.M{"level": "intermediate", "durationHours": 6},
				Lessons: []models.Lesson{
					{LessonID: "bb-1", Title: "Double-entry in plain words", Order: 1},
					{LessonID: "bb-2", Title: "Cash flow statements", Order: 2},
					{LessonID: "bb-3", Title: "Preparing for tax season", Order: 3},
				},
			},
			Quiz: &models.Quiz{
				Title: "Bookkeeping check",
				Questions: []models.Question{
					{Prompt: "Every transaction in double-entry affects at least...", Options: []string{"One account", "Two accounts"}, AnswerIndex: 1},
				},
			},
		},
	}
}
