package cache

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codingWhat/drills/logger"
)

type Options struct {
	Logger *zap.Logger

	// KeyFunc 生成存储key, 默认uuid v4
	KeyFunc func() string
}

type Option func(ops *Options)

func WithLogger(l *zap.Logger) Option {
	return func(ops *Options) {
		ops.Logger = logger.OrNop(l)
	}
}

func WithKeyFunc(fn func() string) Option {
	return func(ops *Options) {
		ops.KeyFunc = fn
	}
}

func defaultOptions() *Options {
	return &Options{
		Logger:  zap.NewNop(),
		KeyFunc: uuid.NewString,
	}
}
