package web

import (
	"context"
	"io"
	"net/http"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPFetcher GETs the page body; any non-2xx status is an error.
type HTTPFetcher struct {
	Client *http.Client
}

func (h HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WithMessagef(err, "read %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("get %s: %s", url, resp.Status)
	}
	return string(body), nil
}

// BreakerFetcher runs next under a hystrix command so a failing origin trips
// the circuit instead of being hit on every cache miss.
type BreakerFetcher struct {
	Command string
	Next    Fetcher
}

func NewBreakerFetcher(command string, config hystrix.CommandConfig, next Fetcher) *BreakerFetcher {
	hystrix.ConfigureCommand(command, config)
	return &BreakerFetcher{Command: command, Next: next}
}

func (b *BreakerFetcher) Fetch(ctx context.Context, url string) (string, error) {
	// hystrix 超时后 run 仍在执行, 结果只能经由带缓冲的 channel 交回
	result := make(chan string, 1)
	err := hystrix.Do(b.Command, func() error {
		body, err := b.Next.Fetch(ctx, url)
		if err != nil {
			return err
		}
		result <- body
		return nil
	}, nil)
	if err != nil {
		return "", err
	}
	return <-result, nil
}

// RateLimitedFetcher waits on limiter before every fetch.
type RateLimitedFetcher struct {
	Limiter *rate.Limiter
	Next    Fetcher
}

func (r RateLimitedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return "", errors.WithMessage(err, "rate limit")
	}
	return r.Next.Fetch(ctx, url)
}
