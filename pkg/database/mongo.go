package database

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	CollectionCourses      = "courses"
	CollectionImages       = "images"
	CollectionUsers        = "users"
	CollectionForumPosts   = "forumPosts"
	CollectionForumReplies = "forumReplies"
	CollectionReviews      = "reviews"
	CollectionCarts        = "carts"
	CollectionPayments     = "payments"
	CollectionPurchases    = "purchases"
	CollectionProgress     = "progress"
	CollectionQuizzes      = "quizzes"
)

const connectTimeout = 10 * time.Second

type MongoDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongoDB(ctx context.Context, cfg *config.Config, log *logger.Logger) (*MongoDB, error) {
	return Connect(ctx, cfg.MongoURI, cfg.MongoDBName, log)
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri, dbName string, log *logger.Logger) (*MongoDB, error) {
	// Embedded documents decode as bson.M so free-form fields serialize as JSON objects.
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Connected to MongoDB database %s", dbName)
	return &MongoDB{Client: client, DB: client.Database(dbName)}, nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

// Indexes lists every index the API relies on, keyed by collection.
func Indexes() map[string][]mongo.IndexModel {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	return map[string][]mongo.IndexModel{
		CollectionUsers: {
			// Users registered before their first sign-in have no uid yet.
			{
				Keys: bson.D{{Key: "uid", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(
					bson.M{"uid": bson.M{"$type": "string", "$gt": ""}},
				),
			},
			unique(bson.D{{Key: "email", Value: 1}}),
		},
		CollectionCourses: {
			{
				Keys: bson.D{{Key: "course_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(
					bson.M{"course_id": bson.M{"$type": "string", "$gt": ""}},
				),
			},
			plain(bson.D{{Key: "image", Value: 1}}),
		},
		CollectionImages: {
			plain(bson.D{{Key: "courseId", Value: 1}}),
			plain(bson.D{{Key: "type", Value: 1}, {Key: "uploadedAt", Value: 1}}),
		},
		CollectionPayments: {
			unique(bson.D{{Key: "reference", Value: 1}}),
			plain(bson.D{{Key: "userId", Value: 1}}),
		},
		CollectionPurchases: {
			unique(bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}}),
		},
		CollectionReviews: {
			unique(bson.D{{Key: "courseId", Value: 1}, {Key: "userId", Value: 1}}),
		},
		CollectionProgress: {
			unique(bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}}),
		},
		CollectionCarts: {
			unique(bson.D{{Key: "userId", Value: 1}}),
		},
		CollectionForumReplies: {
			plain(bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}),
		},
		CollectionForumPosts: {
			plain(bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		CollectionQuizzes: {
			plain(bson.D{{Key: "courseId", Value: 1}}),
		},
	}
}

// EnsureIndexes creates every index from Indexes. Existing indexes are left alone.
func (m *MongoDB) EnsureIndexes(ctx context.Context, log *logger.Logger) error {
	for collection, models := range Indexes() {
		names, err := m.DB.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		log.Info("Ensured indexes on %s: %v", collection, names)
	}
	return nil
}
