package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Image struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Filename   string        `bson:"filename"`
	MimeType   string        `bson:"mimeType"`
	Size       int64         `bson:"size"`
	Data       string        `bson:"data"`
	Type       string        `bson:"type"`
	CourseID   string        `bson:"courseId"`
	UploadedAt time.Time     `bson:"uploadedAt"`
	UploadedBy string        `bson:"uploadedBy"`
}

func (i *Image) BeforeInsert(now time.Time) {
	if i.ID.IsZero() {
		i.ID = bson.NewObjectID()
	}
	if i.Type == "" {
		i.Type = ImageKindCourse
	}
	if i.UploadedAt.IsZero() {
		i.UploadedAt = now
	}
}

// HasDataURLPrefix reports whether Data is already a full data URL.
func (i *Image) HasDataURLPrefix() bool {
	return strings.HasPrefix(i.Data, "data:")
}
