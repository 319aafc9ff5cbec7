package redis

import (
	"context"
)

// Client is the owned handle every drill talks to Redis through.
type Client interface {
	Do(ctx context.Context, cmd string, args ...interface{}) (reply interface{}, err error)
	Pipeline(ctx context.Context) (Pipeline, error)
	Close() error
}

// Pipeline buffers commands until Flush, replies come back from Receive in send order.
type Pipeline interface {
	Send(commandName string, args ...interface{}) error
	Flush() error
	Receive() (reply interface{}, err error)
	Close() error
}
