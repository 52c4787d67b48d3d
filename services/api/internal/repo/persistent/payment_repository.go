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

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) (*entity.Payment, error)
	GetByReference(ctx context.Context, reference string) (*entity.Payment, error)
	// Settle moves a pending payment to status. It reports false when the
	// payment had already left pending, together with its current state.
	Settle(ctx context.Context, reference string, status entity.PaymentStatus) (*entity.Payment, bool, error)
	SuccessfulTotals(ctx context.Context) (count int64, amount int64, err error)
}

type paymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) PaymentRepository {
	return &paymentRepository{coll: db.Collection(database.CollectionPayments)}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	doc := ToPaymentModel(payment)
	doc.BeforeInsert(time.Now().UTC())

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert payment %s: %w", payment.Reference, err)
	}
	return ToPaymentEntity(doc), nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*entity.Payment, error) {
	var doc models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", reference, err)
	}
	return ToPaymentEntity(&doc), nil
}

func (r *paymentRepository) Settle(ctx context.Context, reference string, status entity.PaymentStatus) (*entity.Payment, bool, error) {
	now := time.Now().UTC()
	var doc models.Payment
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"reference": reference, "status": models.PaymentPending},
		bson.M{"$set": bson.M{"status": models.PaymentStatus(status), "verifiedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return ToPaymentEntity(&doc), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to settle payment %s: %w", reference, err)
	}

	current, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *paymentRepository) SuccessfulTotals(ctx context.Context) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentSuccess}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Count  int64 `bson:"count"`
		Amount int64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to decode payment totals: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Count, rows[0].Amount, nil
}
