package localcache

import (
	"time"

	"github.com/coocood/freecache"
)

// FreeCacheStore keeps entries off the GC heap. freecache expires with
// second granularity, so ttl is rounded down to a whole second and an entry
// never outlives the ttl it was given.
type FreeCacheStore struct {
	cache *freecache.Cache
}

// NewFreeCacheStore allocates size bytes up front (freecache enforces 512KB minimum).
func NewFreeCacheStore(size int) *FreeCacheStore {
	return &FreeCacheStore{cache: freecache.NewCache(size)}
}

func (f *FreeCacheStore) Set(key string, val []byte, ttl time.Duration) error {
	seconds := 0
	if ttl > 0 {
		seconds = int(ttl / time.Second)
		// 不足一秒不缓存, freecache 的 0 表示永不过期
		if seconds == 0 {
			f.cache.Del([]byte(key))
			return nil
		}
	}
	return f.cache.Set([]byte(key), val, seconds)
}

func (f *FreeCacheStore) Get(key string) ([]byte, error) {
	val, err := f.cache.Get([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, ErrKeyNotExists
	}
	return val, err
}

func (f *FreeCacheStore) Del(key string) {
	f.cache.Del([]byte(key))
}
