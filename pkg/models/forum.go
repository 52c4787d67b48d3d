package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ForumPost struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Title      string        `bson:"title"`
	Content    string        `bson:"content"`
	Category   string        `bson:"category,omitempty"`
	Tags       []string      `bson:"tags,omitempty"`
	AuthorID   string        `bson:"authorId"`
	AuthorName string        `bson:"authorName"`
	ReplyCount int           `bson:"replyCount"`
	CreatedAt  time.Time     `bson:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
}

func (p *ForumPost) BeforeInsert(now time.Time) {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// ForumReply.ParentReplyID is empty for top-level replies.
type ForumReply struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	PostID        string        `bson:"postId"`
	ParentReplyID string        `bson:"parentReplyId,omitempty"`
	Content       string        `bson:"content"`
	AuthorID      string        `bson:"authorId"`
	AuthorName    string        `bson:"authorName"`
	CreatedAt     time.Time     `bson:"createdAt"`
}

func (r *ForumReply) BeforeInsert(now time.Time) {
	if r.ID.IsZero() {
		r.ID = bson.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}
