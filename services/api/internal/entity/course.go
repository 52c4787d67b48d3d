package entity

import "time"

type Lesson struct {
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Order    int    `json:"order"`
}

type Course struct {
	ID          string                 `json:"_id"`
	CourseID    string                 `json:"course_id,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Lessons     []Lesson               `json:"lessons"`
	Image       string                 `json:"image,omitempty"`
	ImageType   string                 `json:"imageType,omitempty"`
	ImageURL    string                 `json:"imageUrl,omitempty"`
	ImageData   *ImageData             `json:"imageData,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

func (c *Course) IsFree() bool {
	return c.Price <= 0
}

func (c *Course) HasLesson(lessonID string) bool {
	for _, l := range c.Lessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}

// CourseInput carries the writable fields of a course. Nil fields are left
// unchanged on update.
type CourseInput struct {
	CourseID    *string
	Title       *string
	Description *string
	Price       *float64
	Metadata    map[string]interface{}
	Lessons     []Lesson
}
