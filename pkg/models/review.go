package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	CourseID  string        `bson:"courseId"`
	UserID    string        `bson:"userId"`
	UserName  string        `bson:"userName"`
	Rating    int           `bson:"rating"`
	Comment   string        `bson:"comment,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}
