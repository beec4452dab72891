package directory

import (
	"campusgate/src/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = time.Hour

// CachedDirectory is a read-through redis cache in front of another
// Directory. Redis failures fall back to the wrapped directory.
type CachedDirectory struct {
	next Directory
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (c *CachedDirectory) GetUser(ctx context.Context, id uint) (*Person, error) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, cacheKey(id)).Result()
		switch {
		case err == nil:
			var p Person
			if jerr := json.Unmarshal([]byte(val), &p); jerr == nil {
				return &p, nil
			}
			log.Printf("[directory] Discarding malformed cache entry %s\n", cacheKey(id))
		case !errors.Is(err, redis.Nil):
			log.Printf("[redis] Error reading %s: %s\n", cacheKey(id), err.Error())
		}
	}
	p, err := c.next.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		b, _ := json.Marshal(p)
		if err := c.rdb.Set(ctx, cacheKey(id), b, c.ttl).Err(); err != nil {
			log.Printf("[redis] Failed to set value for key %s: %s\n", cacheKey(id), err.Error())
		}
	}
	return p, nil
}

func (c *CachedDirectory) FindByRole(ctx context.Context, role types.Role, departmentID *uint) ([]Person, error) {
	return c.next.FindByRole(ctx, role, departmentID)
}
