package web

import (
	"time"

	"go.uber.org/zap"

	"github.com/codingWhat/drills/cache/localcache"
	"github.com/codingWhat/drills/logger"
)

const (
	DefaultTTL          = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Fetcher      Fetcher
	LocalCache   localcache.MemoryStore
	Logger       *zap.Logger
}

type Option func(ops *Options)

// WithTTL sets how long a fetched page stays under cached:{url}. Redis
// expires with millisecond precision, so anything shorter becomes 1ms.
func WithTTL(ttl time.Duration) Option {
	return func(ops *Options) {
		if ttl <= 0 {
			return
		}
		if ttl < time.Millisecond {
			ttl = time.Millisecond
		}
		ops.TTL = ttl
	}
}

// WithFetchTimeout bounds a shared fetch, which runs detached from the
// context of the caller that started it.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(ops *Options) {
		if timeout > 0 {
			ops.FetchTimeout = timeout
		}
	}
}

func WithFetcher(f Fetcher) Option {
	return func(ops *Options) {
		ops.Fetcher = f
	}
}

func WithLocalCache(lc localcache.MemoryStore) Option {
	return func(ops *Options) {
		ops.LocalCache = lc
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(ops *Options) {
		ops.Logger = logger.OrNop(l)
	}
}
