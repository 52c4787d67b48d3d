package entity

import "time"

type ForumPost struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category,omitempty"`
	Tags       []string  `json:"tags"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	ReplyCount int       `json:"replyCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ForumReply struct {
	ID            string    `json:"_id"`
	PostID        string    `json:"postId"`
	ParentReplyID string    `json:"parentReplyId,omitempty"`
	Content       string    `json:"content"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MaxReplyDepth is the deepest node that still accepts replies.
const MaxReplyDepth = 2

type ThreadNode struct {
	ForumReply
	Depth    int           `json:"depth"`
	CanReply bool          `json:"canReply"`
	Children []*ThreadNode `json:"children"`
}

type ForumFilter struct {
	Category string
	Tag      string
}

// ForumEvent is broadcast to live forum subscribers.
type ForumEvent struct {
	Type   string      `json:"type"`
	PostID string      `json:"postId"`
	Data   interface{} `json:"data"`
}

const (
	ForumEventPostCreated  = "post.created"
	ForumEventPostDeleted  = "post.deleted"
	ForumEventReplyCreated = "reply.created"
)
