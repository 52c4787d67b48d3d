package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UID       string        `bson:"uid"`
	Email     string        `bson:"email"`
	Name      string        `bson:"name"`
	Role      UserRole      `bson:"role"`
	AvatarURL string        `bson:"avatarUrl,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (u *User) BeforeInsert(now time.Time) {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
