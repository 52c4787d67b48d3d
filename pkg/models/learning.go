package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultPassMark = 70

type QuizResult struct {
	Score         int       `bson:"score"`
	Total         int       `bson:"total"`
	Passed        bool      `bson:"passed"`
	Attempts      int       `bson:"attempts"`
	LastAttemptAt time.Time `bson:"lastAttemptAt"`
}

type Progress struct {
	ID               bson.ObjectID         `bson:"_id,omitempty"`
	UserID           string                `bson:"userId"`
	CourseID         string                `bson:"courseId"`
	CompletedLessons []string              `bson:"completedLessons"`
	QuizResults      map[string]QuizResult `bson:"quizResults,omitempty"`
	Percent          float64               `bson:"percent"`
	UpdatedAt        time.Time             `bson:"updatedAt"`
}

type Question struct {
	Prompt      string   `bson:"prompt"`
	Options     []string `bson:"options"`
	AnswerIndex int      `bson:"answerIndex"`
}

type Quiz struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	CourseID  string        `bson:"courseId"`
	Title     string        `bson:"title"`
	PassMark  int           `bson:"passMark"`
	Questions []Question    `bson:"questions"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (q *Quiz) BeforeInsert(now time.Time) {
	if q.ID.IsZero() {
		q.ID = bson.NewObjectID()
	}
	if q.PassMark <= 0 || q.PassMark > 100 {
		q.PassMark = DefaultPassMark
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
}
