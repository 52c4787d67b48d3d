package usecase

import (
	"context"
	"time"

	"cognition-berries/pkg/paystack"
	"cognition-berries/pkg/queue"
)

// Cache is the subset of cache.Store the use cases rely on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	PublishJSON(ctx context.Context, channel string, value interface{}) error
}

type ImageGCPublisher interface {
	PublishImageGCTask(ctx context.Context, task queue.ImageGCTask) error
}

// ObjectStore keeps avatar files. Implemented by s3.Client and storage.LocalStore.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type PaymentGateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
	VerifySignature(body []byte, signature string) bool
}

type EmailChecker interface {
	Check(ctx context.Context, email string) error
}

const (
	coursesCacheKey   = "courses:all"
	coursesVersionKey = "courses:version"
	coursesCacheTTL   = 5 * time.Minute

	ForumEventsChannel = "forum:events"
)
