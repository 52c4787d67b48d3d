package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ImageTypeBase64 = "base64"
	ImageKindCourse = "course_image"
	ImageURLPrefix  = "/api/images/"
)

type Lesson struct {
	LessonID string `bson:"lessonId"`
	Title    string `bson:"title"`
	Content  string `bson:"content,omitempty"`
	Order    int    `bson:"order"`
}

// Course.Image holds "", a legacy upload path, or the hex id of an Image.
type Course struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	CourseID    string        `bson:"course_id,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Price       float64       `bson:"price"`
	Metadata    bson.M        `bson:"metadata,omitempty"`
	Lessons     []Lesson      `bson:"lessons,omitempty"`
	Image       string        `bson:"image,omitempty"`
	ImageType   string        `bson:"imageType,omitempty"`
	ImageURL    string        `bson:"imageUrl,omitempty"`
	ImageData   *ImageData    `bson:"imageData,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

// ImageData is the projection of an Image joined onto a course read.
type ImageData struct {
	ID       bson.ObjectID `bson:"_id"`
	Filename string        `bson:"filename"`
	MimeType string        `bson:"mimeType"`
	Size     int64         `bson:"size"`
	Data     string        `bson:"data"`
}

func (c *Course) BeforeInsert(now time.Time) {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// ImageRef returns the referenced Image id, or false for empty and legacy values.
func (c *Course) ImageRef() (bson.ObjectID, bool) {
	return ParseImageRef(c.Image)
}

func ParseImageRef(ref string) (bson.ObjectID, bool) {
	if ref == "" {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(ref)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

func ImageURL(id bson.ObjectID) string {
	return ImageURLPrefix + id.Hex()
}
