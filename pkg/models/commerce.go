package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type CartItem struct {
	CourseID string    `bson:"courseId"`
	Title    string    `bson:"title"`
	Price    float64   `bson:"price"`
	AddedAt  time.Time `bson:"addedAt"`
}

type Cart struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	Items     []CartItem    `bson:"items"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}

func (c *Cart) Contains(courseID string) bool {
	for _, item := range c.Items {
		if item.CourseID == courseID {
			return true
		}
	}
	return false
}

// Payment.Amount is in kobo.
type Payment struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Reference        string        `bson:"reference"`
	UserID           string        `bson:"userId"`
	Email            string        `bson:"email"`
	CourseIDs        []string      `bson:"courseIds"`
	Amount           int64         `bson:"amount"`
	Status           PaymentStatus `bson:"status"`
	AuthorizationURL string        `bson:"authorizationUrl,omitempty"`
	AccessCode       string        `bson:"accessCode,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt"`
	VerifiedAt       *time.Time    `bson:"verifiedAt,omitempty"`
}

func (p *Payment) BeforeInsert(now time.Time) {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

type Purchase struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      string        `bson:"userId"`
	CourseID    string        `bson:"courseId"`
	PaymentRef  string        `bson:"paymentRef,omitempty"`
	Amount      float64       `bson:"amount"`
	PurchasedAt time.Time     `bson:"purchasedAt"`
}
