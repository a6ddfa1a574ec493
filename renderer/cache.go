package renderer

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/kovetskiy/mark-diagram/attachment"
	"github.com/reconquest/pkg/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 500
)

// Cache remembers rendered images by engine, format and source checksum,
// and collapses concurrent renders of the same diagram into one call.
type Cache struct {
	name   string
	engine Engine
	ttl    time.Duration
	items  *ttlcache.Cache[string, []byte]
	group  singleflight.Group
}

func NewCache(name string, engine Engine, ttl time.Duration, capacity uint64) *Cache {
	if capacity == 0 {
		capacity = DefaultCacheCapacity
	}

	return &Cache{
		name:   name,
		engine: engine,
		ttl:    ttl,
		items: ttlcache.New(
			ttlcache.WithCapacity[string, []byte](capacity),
		),
	}
}

func (cache *Cache) Render(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
	key := cache.name + ":" + string(format) + ":" + attachment.Checksum(diagram)

	item := cache.items.Get(key, ttlcache.WithDisableTouchOnHit[string, []byte]())
	if item != nil {
		log.Debugf(nil, "render cache hit: %s", key)
		return item.Value(), nil
	}

	results := cache.group.DoChan(key, func() (interface{}, error) {
		// callers joining this render must not inherit the cancellation of
		// the one that started it; the render timeout still applies
		image, err := cache.engine.Render(context.WithoutCancel(ctx), diagram, format)
		if err != nil {
			return nil, err
		}

		cache.items.Set(key, image, cache.ttl)

		return image, nil
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}

		return result.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (cache *Cache) Len() int {
	return cache.items.Len()
}
