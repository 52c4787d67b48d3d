package entity

import "time"

const DefaultPassMark = 70

type QuizResult struct {
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Passed        bool      `json:"passed"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
}

type Progress struct {
	UserID           string                `json:"userId"`
	CourseID         string                `json:"courseId"`
	CompletedLessons []string              `json:"completedLessons"`
	QuizResults      map[string]QuizResult `json:"quizResults"`
	Percent          float64               `json:"percent"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

type Question struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

type Quiz struct {
	ID        string     `json:"_id"`
	CourseID  string     `json:"courseId"`
	Title     string     `json:"title"`
	PassMark  int        `json:"passMark"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

type PublicQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// PublicQuiz is a quiz as shown to learners, without answers.
type PublicQuiz struct {
	ID        string           `json:"_id"`
	CourseID  string           `json:"courseId"`
	Title     string           `json:"title"`
	PassMark  int              `json:"passMark"`
	Questions []PublicQuestion `json:"questions"`
}

func (q *Quiz) Public() PublicQuiz {
	questions := make([]PublicQuestion, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = PublicQuestion{Prompt: question.Prompt, Options: question.Options}
	}
	return PublicQuiz{
		ID:        q.ID,
		CourseID:  q.CourseID,
		Title:     q.Title,
		PassMark:  q.PassMark,
		Questions: questions,
	}
}

type QuizSubmission struct {
	QuizID   string  `json:"quizId"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	PassMark int     `json:"passMark"`
	Passed   bool    `json:"passed"`
	Attempts int     `json:"attempts"`
}
