package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingWhat/drills/cache/localcache"
	"github.com/codingWhat/drills/cache/redis"
	"github.com/codingWhat/drills/conf"
)

func newClient(t *testing.T, driver string) (redis.Client, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client, err := redis.Dial(context.Background(), conf.Redis{Driver: driver, Addr: s.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, s
}

func countingFetcher(calls *int32) FetcherFunc {
	return func(ctx context.Context, url string) (string, error) {
		n := atomic.AddInt32(calls, 1)
		return fmt.Sprintf("<html>%s #%d</html>", url, n), nil
	}
}

func TestTracker_GetPage(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{redis.DriverGoRedis, redis.DriverRedigo} {
		t.Run(driver, func(t *testing.T) {
			client, s := newClient(t, driver)
			var calls int32
			tr := NewTracker(client, WithFetcher(countingFetcher(&calls)))

			url := "http://slowwly.example/page"
			body, err := tr.GetPage(ctx, url)
			assert.Nil(t, err)
			assert.Equal(t, "<html>"+url+" #1</html>", body)

			body, err = tr.GetPage(ctx, url)
			assert.Nil(t, err)
			assert.Equal(t, "<html>"+url+" #1</html>", body)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

			n, err := tr.Count(ctx, url)
			assert.Nil(t, err)
			assert.Equal(t, int64(2), n)
			s.CheckGet(t, "count:"+url, "2")
			assert.Equal(t, DefaultTTL, s.TTL("cached:"+url))

			s.FastForward(DefaultTTL + time.Second)
			assert.False(t, s.Exists("cached:"+url))

			body, err = tr.GetPage(ctx, url)
			assert.Nil(t, err)
			assert.Equal(t, "<html>"+url+" #2</html>", body)

			n, err = tr.Count(ctx, url)
			assert.Nil(t, err)
			assert.Equal(t, int64(3), n)
		})
	}
}

func TestTracker_CountUnknown(t *testing.T) {
	client, _ := newClient(t, redis.DriverGoRedis)
	n, err := NewTracker(client).Count(context.Background(), "http://never")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTracker_EmptyURL(t *testing.T) {
	client, _ := newClient(t, redis.DriverGoRedis)
	_, err := NewTracker(client).GetPage(context.Background(), "")
	assert.Equal(t, ErrEmptyURL, err)
}

func TestTracker_FetchErrorNotCached(t *testing.T) {
	client, s := newClient(t, redis.DriverGoRedis)
	tr := NewTracker(client, WithFetcher(FetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "", fmt.Errorf("boom")
	})))

	_, err := tr.GetPage(context.Background(), "http://down")
	assert.NotNil(t, err)
	assert.False(t, s.Exists("cached:http://down"))
	s.CheckGet(t, "count:http://down", "1")
}

func TestTracker_LocalCache(t *testing.T) {
	ctx := context.Background()
	client, s := newClient(t, redis.DriverGoRedis)
	var calls int32
	tr := NewTracker(client,
		WithFetcher(countingFetcher(&calls)),
		WithLocalCache(localcache.NewSimpleMemoryStore()),
		WithTTL(time.Minute),
	)

	url := "http://local"
	first, err := tr.GetPage(ctx, url)
	require.NoError(t, err)

	s.Del("cached:" + url)
	second, err := tr.GetPage(ctx, url)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	s.CheckGet(t, "count:"+url, "2")
}

func TestTracker_ConcurrentMissesShareFetch(t *testing.T) {
	ctx := context.Background()
	client, s := newClient(t, redis.DriverGoRedis)

	var calls int32
	release := make(chan struct{})
	tr := NewTracker(client, WithFetcher(FetcherFunc(func(ctx context.Context, url string) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "body", nil
	})))

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := tr.GetPage(ctx, "http://hot")
			assert.Nil(t, err)
			assert.Equal(t, "body", body)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	s.CheckGet(t, "count:http://hot", fmt.Sprint(n))
}

type recordingStore struct {
	localcache.MemoryStore
	mu   sync.Mutex
	ttls []time.Duration
}

func (r *recordingStore) Set(key string, val []byte, ttl time.Duration) error {
	r.mu.Lock()
	r.ttls = append(r.ttls, ttl)
	r.mu.Unlock()
	return r.MemoryStore.Set(key, val, ttl)
}

func TestTracker_LocalCopyBoundedByRedisTTL(t *testing.T) {
	ctx := context.Background()
	client, s := newClient(t, redis.DriverGoRedis)
	var calls int32
	origin := NewTracker(client, WithFetcher(countingFetcher(&calls)))
	local := &recordingStore{MemoryStore: localcache.NewSimpleMemoryStore()}
	near := NewTracker(client, WithFetcher(countingFetcher(&calls)), WithLocalCache(local))

	url := "http://bounded"
	_, err := origin.GetPage(ctx, url)
	require.NoError(t, err)

	s.FastForward(DefaultTTL - 200*time.Millisecond)
	body, err := near.GetPage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "<html>"+url+" #1</html>", body)
	require.Len(t, local.ttls, 1)
	assert.True(t, local.ttls[0] > 0)
	assert.True(t, local.ttls[0] <= 200*time.Millisecond)

	s.FastForward(time.Second)
	body, err = origin.GetPage(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "<html>"+url+" #2</html>", body)

	time.Sleep(300 * time.Millisecond)
	body, err = near.GetPage(ctx, url)
	assert.Nil(t, err)
	assert.Equal(t, "<html>"+url+" #2</html>", body)
	s.CheckGet(t, "count:"+url, "4")
}

func TestTracker_LocalHitOnlyCounts(t *testing.T) {
	ctx := context.Background()
	client, s := newClient(t, redis.DriverRedigo)
	var calls int32
	tr := NewTracker(client, WithFetcher(countingFetcher(&calls)), WithLocalCache(localcache.NewSimpleMemoryStore()))

	url := "http://near"
	_, err := tr.GetPage(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.Set("cached:"+url, "changed"))

	body, err := tr.GetPage(ctx, url)
	assert.Nil(t, err)
	assert.Equal(t, "<html>"+url+" #1</html>", body)
	s.CheckGet(t, "count:"+url, "2")
}

func TestTracker_CallerCancelDoesNotFailSharedFetch(t *testing.T) {
	client, s := newClient(t, redis.DriverGoRedis)

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	tr := NewTracker(client, WithFetcher(FetcherFunc(func(ctx context.Context, url string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "body", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})))

	url := "http://shared"
	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := tr.GetPage(ctxA, url)
		errA <- err
	}()
	<-started

	type result struct {
		body string
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		body, err := tr.GetPage(context.Background(), url)
		resB <- result{body, err}
	}()
	// B 已经挂在同一次回源上
	assert.Eventually(t, func() bool {
		v, _ := s.Get("count:" + url)
		return v == "2"
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("canceled caller still blocked")
	}

	close(release)
	select {
	case r := <-resB:
		assert.Nil(t, r.err)
		assert.Equal(t, "body", r.body)
	case <-time.After(time.Second):
		t.Fatal("shared caller never returned")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	s.CheckGet(t, "cached:"+url, "body")
}

func TestTracker_FetchTimeout(t *testing.T) {
	client, s := newClient(t, redis.DriverGoRedis)
	tr := NewTracker(client,
		WithFetchTimeout(20*time.Millisecond),
		WithFetcher(FetcherFunc(func(ctx context.Context, url string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})),
	)

	_, err := tr.GetPage(context.Background(), "http://hang")
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.False(t, s.Exists("cached:http://hang"))
}

func TestTracker_SubMillisecondTTL(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t, redis.DriverGoRedis)
	var calls int32
	tr := NewTracker(client, WithFetcher(countingFetcher(&calls)), WithTTL(time.Microsecond))
	assert.Equal(t, time.Millisecond, tr.ops.TTL)

	body, err := tr.GetPage(ctx, "http://tiny")
	assert.Nil(t, err)
	assert.Equal(t, "<html>http://tiny #1</html>", body)
}

func TestOptions_NilLogger(t *testing.T) {
	client, _ := newClient(t, redis.DriverGoRedis)
	var calls int32
	tr := NewTracker(client, WithLogger(nil), WithFetcher(countingFetcher(&calls)))
	assert.NotNil(t, tr.ops.Logger)

	_, err := tr.GetPage(context.Background(), "http://quiet")
	assert.Nil(t, err)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("hello page"))
	}))
	defer srv.Close()

	body, err := HTTPFetcher{}.Fetch(context.Background(), srv.URL+"/ok")
	assert.Nil(t, err)
	assert.Equal(t, "hello page", body)

	_, err = HTTPFetcher{Client: srv.Client()}.Fetch(context.Background(), srv.URL+"/missing")
	assert.NotNil(t, err)
}
