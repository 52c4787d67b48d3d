package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, store := range []*Store{nil, NewStore(nil)} {
		assert.False(t, store.Enabled())

		var out []string
		assert.ErrorIs(t, store.GetJSON(ctx, "courses:all", &out), ErrCacheMiss)
		assert.NoError(t, store.SetJSON(ctx, "courses:all", []string{"a"}, time.Minute))
		n, err := store.Incr(ctx, "courses:version")
		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, store.PublishJSON(ctx, "forum:events", map[string]string{"type": "post"}))
		assert.Nil(t, store.Subscribe(ctx, "forum:events"))
	}
}
