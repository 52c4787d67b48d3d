package persistent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	// UpsertByUID inserts a student record on first sight and returns the stored user.
	UpsertByUID(ctx context.Context, uid, email, name string) (*entity.User, error)
	GetByUID(ctx context.Context, uid string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmailOrUID(ctx context.Context, email, uid string) (bool, error)
	List(ctx context.Context) ([]*entity.User, error)
	UpdateByUID(ctx context.Context, uid string, fields UserUpdate) (*entity.User, error)
	UpdateByEmail(ctx context.Context, email string, fields UserUpdate) (*entity.User, error)
	DeleteByEmail(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

type UserUpdate struct {
	Name      *string
	Role      *entity.UserRole
	AvatarURL *string
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(database.CollectionUsers)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	doc := ToUserModel(user)
	doc.Email = normalizeEmail(doc.Email)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, entity.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return ToUserEntity(doc), nil
}

func (r *userRepository) UpsertByUID(ctx context.Context, uid, email, name string) (*entity.User, error) {
	now := time.Now().UTC()
	insert := bson.M{
		"_id":       bson.NewObjectID(),
		"role":      models.RoleStudent,
		"name":      name,
		"createdAt": now,
		"updatedAt": now,
	}
	// An empty email would collide on the unique index, so such users get a placeholder.
	if email = normalizeEmail(email); email != "" {
		insert["email"] = email
	} else {
		insert["email"] = uid + "@users.noreply"
	}

	var doc models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"uid": uid},
		bson.M{"$setOnInsert": insert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Registered through POST /users under a different uid: adopt that record.
			return r.adoptByEmail(ctx, uid, email)
		}
		return nil, fmt.Errorf("failed to upsert user %s: %w", uid, err)
	}
	return ToUserEntity(&doc), nil
}

func (r *userRepository) adoptByEmail(ctx context.Context, uid, email string) (*entity.User, error) {
	if email == "" {
		return nil, entity.ErrUserExists
	}
	var doc models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"uid": uid, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to link user %s to %s: %w", email, uid, err)
	}
	return ToUserEntity(&doc), nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return ToUserEntity(&doc), nil
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"uid": uid})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *userRepository) ExistsByEmailOrUID(ctx context.Context, email, uid string) (bool, error) {
	or := bson.A{bson.M{"email": normalizeEmail(email)}}
	if uid != "" {
		or = append(or, bson.M{"uid": uid})
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"$or": or}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.User
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	users := make([]*entity.User, 0, len(docs))
	for i := range docs {
		users = append(users, ToUserEntity(&docs[i]))
	}
	return users, nil
}

func (r *userRepository) update(ctx context.Context, filter bson.M, fields UserUpdate) (*entity.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Role != nil {
		set["role"] = models.UserRole(*fields.Role)
	}
	if fields.AvatarURL != nil {
		set["avatarUrl"] = *fields.AvatarURL
	}

	var doc models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return ToUserEntity(&doc), nil
}

func (r *userRepository) UpdateByUID(ctx context.Context, uid string, fields UserUpdate) (*entity.User, error) {
	return r.update(ctx, bson.M{"uid": uid}, fields)
}

func (r *userRepository) UpdateByEmail(ctx context.Context, email string, fields UserUpdate) (*entity.User, error) {
	return r.update(ctx, bson.M{"email": normalizeEmail(email)}, fields)
}

func (r *userRepository) DeleteByEmail(ctx context.Context, email string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"email": normalizeEmail(email)})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", email, err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
