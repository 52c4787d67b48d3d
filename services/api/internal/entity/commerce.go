package entity

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type CartItem struct {
	CourseID string    `json:"courseId"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	AddedAt  time.Time `json:"addedAt"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Cart) Contains(courseID string) bool {
	for _, item := range c.Items {
		if item.CourseID == courseID {
			return true
		}
	}
	return false
}

type Payment struct {
	ID               string        `json:"_id"`
	Reference        string        `json:"reference"`
	UserID           string        `json:"userId"`
	Email            string        `json:"email"`
	CourseIDs        []string      `json:"courseIds"`
	Amount           int64         `json:"amount"`
	Status           PaymentStatus `json:"status"`
	AuthorizationURL string        `json:"authorizationUrl,omitempty"`
	AccessCode       string        `json:"accessCode,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	VerifiedAt       *time.Time    `json:"verifiedAt,omitempty"`
}

type Purchase struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	PaymentRef  string    `json:"paymentRef,omitempty"`
	Amount      float64   `json:"amount"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

type CheckoutSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"accessCode"`
	Amount           int64  `json:"amount"`
}
