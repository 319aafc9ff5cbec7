package web

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/codingWhat/drills/cache/redis"
)

func countKey(url string) string  { return "count:" + url }
func cachedKey(url string) string { return "cached:" + url }

// Tracker serves pages through Redis, counting every request per url and
// keeping each fetched body for a short ttl.
type Tracker struct {
	client redis.Client
	sg     singleflight.Group
	ops    *Options
}

func NewTracker(client redis.Client, options ...Option) *Tracker {
	ops := &Options{
		TTL:          DefaultTTL,
		FetchTimeout: DefaultFetchTimeout,
		Fetcher:      HTTPFetcher{},
		Logger:       zap.NewNop(),
	}
	for _, op := range options {
		op(ops)
	}
	return &Tracker{client: client, ops: ops}
}

// GetPage counts the request, then answers from the local tier, Redis, or
// the fetcher in that order.
func (t *Tracker) GetPage(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrEmptyURL
	}

	if t.ops.LocalCache != nil {
		if body, err := t.ops.LocalCache.Get(url); err == nil {
			if _, err := t.client.Do(ctx, "INCR", countKey(url)); err != nil {
				return "", errors.WithMessagef(err, "incr %s", countKey(url))
			}
			return string(body), nil
		}
	}

	body, remaining, hit, err := t.track(ctx, url)
	if err != nil {
		return "", err
	}
	if hit {
		// 本地副本不能比 cached:{url} 活得久
		if remaining > 0 {
			t.saveLocal(url, body, remaining)
		}
		return body, nil
	}

	// 合并同一url的并发回源; 回源脱离发起者的ctx, 每个调用方只等自己的ctx
	ch := t.sg.DoChan(url, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.ops.FetchTimeout)
		defer cancel()
		return t.fetch(fetchCtx, url)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		t.ops.Logger.Debug("fetched page", zap.String("url", url), zap.Bool("shared", res.Shared))
		return res.Val.(string), nil
	}
}

// track increments count:{url} and reads cached:{url} with its remaining ttl
// in one round trip.
func (t *Tracker) track(ctx context.Context, url string) (body string, remaining time.Duration, hit bool, err error) {
	p, err := t.client.Pipeline(ctx)
	if err != nil {
		return "", 0, false, err
	}
	defer p.Close()
	_ = p.Send("INCR", countKey(url))
	_ = p.Send("GET", cachedKey(url))
	_ = p.Send("PTTL", cachedKey(url))
	if err := p.Flush(); err != nil {
		return "", 0, false, errors.WithMessagef(err, "track %s", url)
	}
	if _, err := p.Receive(); err != nil {
		return "", 0, false, errors.WithMessagef(err, "incr %s", countKey(url))
	}
	reply, err := p.Receive()
	if err != nil {
		return "", 0, false, errors.WithMessagef(err, "get %s", cachedKey(url))
	}
	pttl, err := redis.Int64(p.Receive())
	if err != nil {
		return "", 0, false, errors.WithMessagef(err, "pttl %s", cachedKey(url))
	}
	if reply == nil {
		return "", 0, false, nil
	}
	if body, err = redis.String(reply, nil); err != nil {
		return "", 0, false, err
	}
	// -1 没有过期时间, -2 已不存在
	return body, time.Duration(pttl) * time.Millisecond, true, nil
}

func (t *Tracker) fetch(ctx context.Context, url string) (interface{}, error) {
	body, err := t.ops.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(t.ops.TTL)
	if _, err := t.client.Do(ctx, "SET", cachedKey(url), body, "PX", t.ops.TTL.Milliseconds()); err != nil {
		return nil, errors.WithMessagef(err, "set %s", cachedKey(url))
	}
	if remaining := time.Until(deadline); remaining > 0 {
		t.saveLocal(url, body, remaining)
	}
	return body, nil
}

// Count returns how many times url was requested.
func (t *Tracker) Count(ctx context.Context, url string) (int64, error) {
	reply, err := t.client.Do(ctx, "GET", countKey(url))
	if err != nil || reply == nil {
		return 0, err
	}
	return redis.Int64(reply, nil)
}

func (t *Tracker) saveLocal(url, body string, ttl time.Duration) {
	if t.ops.LocalCache == nil {
		return
	}
	if err := t.ops.LocalCache.Set(url, []byte(body), ttl); err != nil {
		t.ops.Logger.Warn("local cache set failed", zap.String("url", url), zap.Error(err))
	}
}
