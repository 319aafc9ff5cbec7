package cache

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/codingWhat/drills/cache/redis"
)

// StoreMethod is the key Store's call counter lives under; its history lists
// are StoreMethod+":inputs" and StoreMethod+":outputs".
const StoreMethod = "Cache.Store"

// TransformFunc converts a raw stored value on the way out.
type TransformFunc func(raw []byte) (interface{}, error)

// Cache stores values under random keys in the active Redis database.
type Cache struct {
	client redis.Client
	store  StoreFunc
	ops    *Options
}

// New takes ownership of client and flushes the active database.
func New(ctx context.Context, client redis.Client, options ...Option) (*Cache, error) {
	ops := defaultOptions()
	for _, op := range options {
		op(ops)
	}

	if _, err := client.Do(ctx, "FLUSHDB"); err != nil {
		return nil, errors.WithMessage(err, "flushdb")
	}

	c := &Cache{
		client: client,
		ops:    ops,
	}
	c.store = CallHistory(client, StoreMethod, CountCalls(client, StoreMethod, c.set))
	return c, nil
}

// Store writes data under a fresh key and returns the key once Redis acknowledged the write.
func (c *Cache) Store(ctx context.Context, data interface{}) (string, error) {
	if !supported(data) {
		return "", errors.WithMessagef(ErrUnsupportedValue, "got %T", data)
	}
	return c.store(ctx, data)
}

func (c *Cache) set(ctx context.Context, data interface{}) (string, error) {
	key := c.ops.KeyFunc()
	// go-redis 与 redigo 对 float32 的格式化不同, 统一成最短十进制
	if f, ok := data.(float32); ok {
		data = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	if _, err := c.client.Do(ctx, "SET", key, data); err != nil {
		return "", errors.WithMessagef(err, "set %s", key)
	}
	c.ops.Logger.Debug("stored value", zap.String("key", key))
	return key, nil
}

// Get returns the raw bytes under key, or fn applied to them. A missing key
// yields nil without calling fn.
func (c *Cache) Get(ctx context.Context, key string, fn TransformFunc) (interface{}, error) {
	reply, err := c.client.Do(ctx, "GET", key)
	if err != nil {
		return nil, errors.WithMessagef(err, "get %s", key)
	}
	if reply == nil {
		return nil, nil
	}
	raw, err := redis.Bytes(reply, nil)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return raw, nil
	}
	return fn(raw)
}

func (c *Cache) GetStr(ctx context.Context, key string) (string, error) {
	v, err := c.Get(ctx, key, func(raw []byte) (interface{}, error) {
		return string(raw), nil
	})
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", errors.WithMessage(ErrKeyNotExists, key)
	}
	return v.(string), nil
}

func (c *Cache) GetInt(ctx context.Context, key string) (int64, error) {
	v, err := c.Get(ctx, key, func(raw []byte) (interface{}, error) {
		return strconv.ParseInt(string(raw), 10, 64)
	})
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, errors.WithMessage(ErrKeyNotExists, key)
	}
	return v.(int64), nil
}

// Client exposes the underlying handle for raw reads outside the Cache contract.
func (c *Cache) Client() redis.Client {
	return c.client
}

func supported(data interface{}) bool {
	switch data.(type) {
	case string, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
