package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ForumRepository interface {
	CreatePost(ctx context.Context, post *entity.ForumPost) (*entity.ForumPost, error)
	GetPost(ctx context.Context, id string) (*entity.ForumPost, error)
	ListPosts(ctx context.Context, filter entity.ForumFilter) ([]*entity.ForumPost, error)
	// DeletePost removes the post together with all of its replies.
	DeletePost(ctx context.Context, id string) error
	CreateReply(ctx context.Context, reply *entity.ForumReply) (*entity.ForumReply, error)
	GetReply(ctx context.Context, id string) (*entity.ForumReply, error)
	ListReplies(ctx context.Context, postID string) ([]*entity.ForumReply, error)
	CountPosts(ctx context.Context) (int64, error)
}

type forumRepository struct {
	posts   *mongo.Collection
	replies *mongo.Collection
}

func NewForumRepository(db *mongo.Database) ForumRepository {
	return &forumRepository{
		posts:   db.Collection(database.CollectionForumPosts),
		replies: db.Collection(database.CollectionForumReplies),
	}
}

func (r *forumRepository) CreatePost(ctx context.Context, post *entity.ForumPost) (*entity.ForumPost, error) {
	doc := ToForumPostModel(post)
	doc.ReplyCount = 0
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert forum post: %w", err)
	}
	return ToForumPostEntity(doc), nil
}

func (r *forumRepository) GetPost(ctx context.Context, id string) (*entity.ForumPost, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrInvalidID
	}

	var doc models.ForumPost
	if err := r.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find forum post %s: %w", id, err)
	}
	return ToForumPostEntity(&doc), nil
}

func (r *forumRepository) ListPosts(ctx context.Context, filter entity.ForumFilter) ([]*entity.ForumPost, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}

	cursor, err := r.posts.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list forum posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.ForumPost
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode forum posts: %w", err)
	}
	posts := make([]*entity.ForumPost, 0, len(docs))
	for i := range docs {
		posts = append(posts, ToForumPostEntity(&docs[i]))
	}
	return posts, nil
}

func (r *forumRepository) DeletePost(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return entity.ErrInvalidID
	}

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete forum post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrPostNotFound
	}
	if _, err := r.replies.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return fmt.Errorf("failed to delete replies of post %s: %w", id, err)
	}
	return nil
}

func (r *forumRepository) CreateReply(ctx context.Context, reply *entity.ForumReply) (*entity.ForumReply, error) {
	postOID, err := bson.ObjectIDFromHex(reply.PostID)
	if err != nil {
		return nil, entity.ErrInvalidID
	}

	doc := ToForumReplyModel(reply)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.replies.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert forum reply: %w", err)
	}
	_, err = r.posts.UpdateOne(ctx,
		bson.M{"_id": postOID},
		bson.M{"$inc": bson.M{"replyCount": 1}, "$set": bson.M{"updatedAt": doc.CreatedAt}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bump reply count of post %s: %w", reply.PostID, err)
	}
	return ToForumReplyEntity(doc), nil
}

func (r *forumRepository) GetReply(ctx context.Context, id string) (*entity.ForumReply, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrInvalidID
	}

	var doc models.ForumReply
	if err := r.replies.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrReplyNotFound
		}
		return nil, fmt.Errorf("failed to find forum reply %s: %w", id, err)
	}
	return ToForumReplyEntity(&doc), nil
}

func (r *forumRepository) ListReplies(ctx context.Context, postID string) ([]*entity.ForumReply, error) {
	cursor, err := r.replies.Find(ctx,
		bson.M{"postId": postID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies of post %s: %w", postID, err)
	}
	defer cursor.Close(ctx)

	var docs []models.ForumReply
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode forum replies: %w", err)
	}
	replies := make([]*entity.ForumReply, 0, len(docs))
	for i := range docs {
		replies = append(replies, ToForumReplyEntity(&docs[i]))
	}
	return replies, nil
}

func (r *forumRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.posts.CountDocuments(ctx, bson.M{})
}
