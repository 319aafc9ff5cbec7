package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codingWhat/drills/cache"
	"github.com/codingWhat/drills/cache/localcache"
	"github.com/codingWhat/drills/cache/redis"
	"github.com/codingWhat/drills/web"
	"github.com/codingWhat/drills/web/server"
)

var storeCmd = &cobra.Command{
	Use:   "store <value>...",
	Short: "Flush the redis db, store each value under a random key and replay the calls",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := redis.Dial(ctx, config.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		c, err := cache.New(ctx, client, cache.WithLogger(log))
		if err != nil {
			return err
		}
		for _, arg := range args {
			key, err := c.Store(ctx, arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return cache.Replay(ctx, client, cache.StoreMethod, cmd.OutOrStdout())
	},
}

var pageLocal bool

var pageCmd = &cobra.Command{
	Use:   "page <url>",
	Short: "Fetch a page through the expiring redis cache and print its access count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tracker, closeFn, err := newTracker(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		body, err := tracker.GetPage(ctx, args[0])
		if err != nil {
			return err
		}
		n, err := tracker.Count(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), body)
		log.Info("page served", zap.String("url", args[0]), zap.Int64("count", n))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /page and /count over http",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, closeFn, err := newTracker(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		log.Info("listening", zap.String("addr", config.Web.ServeIP))
		return http.ListenAndServe(config.Web.ServeIP, server.NewEngine(tracker, log))
	},
}

func init() {
	for _, cmd := range []*cobra.Command{pageCmd, serveCmd} {
		cmd.Flags().BoolVar(&pageLocal, "local-cache", false, "keep pages in an in-process cache too")
	}
}

func newTracker(cmd *cobra.Command) (*web.Tracker, func(), error) {
	client, err := redis.Dial(cmd.Context(), config.Redis)
	if err != nil {
		return nil, nil, err
	}

	fetcher := web.RateLimitedFetcher{
		Limiter: rate.NewLimiter(rate.Limit(20), 5),
		Next: web.NewBreakerFetcher("page-fetch", hystrix.CommandConfig{
			Timeout:                int((5 * time.Second).Milliseconds()),
			MaxConcurrentRequests:  50,
			RequestVolumeThreshold: 10,
			ErrorPercentThreshold:  50,
			SleepWindow:            5000,
		}, web.HTTPFetcher{Client: &http.Client{Timeout: 5 * time.Second}}),
	}
	options := []web.Option{
		web.WithTTL(config.Web.CacheTTL),
		web.WithFetcher(fetcher),
		web.WithLogger(log),
	}
	if pageLocal {
		options = append(options, web.WithLocalCache(localcache.NewFreeCacheStore(16*1024*1024)))
	}
	return web.NewTracker(client, options...), func() { _ = client.Close() }, nil
}
