package directory

import (
	"campusgate/src/types"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDirectory struct {
	*MemoryDirectory
	calls int
}

func (c *countingDirectory) GetUser(ctx context.Context, id uint) (*Person, error) {
	c.calls++
	return c.MemoryDirectory.GetUser(ctx, id)
}

func TestCachedDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	dept := uint(2)
	inner := &countingDirectory{MemoryDirectory: NewMemoryDirectory(Person{
		ID: 5, Name: "Kiran", Email: "kiran@example.com", Role: types.ROLE_STAFF, DepartmentID: &dept,
	})}
	dir := NewCachedDirectory(inner, rdb, time.Hour)
	ctx := context.Background()

	t.Run("reads through and caches", func(t *testing.T) {
		p, err := dir.GetUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Kiran", p.Name)
		assert.True(t, mr.Exists("user:5"))

		p, err = dir.GetUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, types.ROLE_STAFF, p.Role)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("entries expire", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)
		assert.False(t, mr.Exists("user:5"))
		_, err := dir.GetUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("missing users are not cached", func(t *testing.T) {
		_, err := dir.GetUser(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, mr.Exists("user:404"))
	})

	t.Run("falls back when redis is down", func(t *testing.T) {
		bad := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
		down := NewCachedDirectory(inner, bad, time.Hour)
		p, err := down.GetUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, uint(5), p.ID)
	})
}
