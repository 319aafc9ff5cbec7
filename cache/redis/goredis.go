package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type GoRedisClient struct {
	client *redis.Client
}

func NewGoRedisClient(client *redis.Client) *GoRedisClient {
	return &GoRedisClient{client: client}
}

func (c *GoRedisClient) Do(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	reply, err := c.client.Do(ctx, append([]interface{}{cmd}, args...)...).Result()
	return normalize(reply, err)
}

func (c *GoRedisClient) Pipeline(ctx context.Context) (Pipeline, error) {
	return NewGoRedisPipeline(ctx, c.client.Pipeline()), nil
}

func (c *GoRedisClient) Close() error {
	return c.client.Close()
}

type GoRedisPipeline struct {
	ctx      context.Context
	pipeline redis.Pipeliner
	cmds     []*redis.Cmd
}

func NewGoRedisPipeline(ctx context.Context, pipeline redis.Pipeliner) *GoRedisPipeline {
	return &GoRedisPipeline{ctx: ctx, pipeline: pipeline}
}

func (p *GoRedisPipeline) Send(commandName string, args ...interface{}) error {
	cmd := redis.NewCmd(p.ctx, append([]interface{}{commandName}, args...)...)
	if err := p.pipeline.Process(p.ctx, cmd); err != nil {
		return err
	}
	p.cmds = append(p.cmds, cmd)
	return nil
}

// Flush executes the buffered commands. A nil reply in the batch is not an error,
// it surfaces as a nil reply from Receive.
func (p *GoRedisPipeline) Flush() error {
	_, err := p.pipeline.Exec(p.ctx)
	if err == redis.Nil {
		return nil
	}
	return err
}

// Receive pops the next reply. go-redis has already read every reply during Flush.
func (p *GoRedisPipeline) Receive() (interface{}, error) {
	if len(p.cmds) == 0 {
		return nil, errors.New("pipeline has no pending reply")
	}
	cmd := p.cmds[0]
	p.cmds = p.cmds[1:]
	return normalize(cmd.Result())
}

func (p *GoRedisPipeline) Close() error {
	p.cmds = nil
	return p.pipeline.Close()
}

// normalize maps go-redis reply shapes onto the redigo ones: bulk strings become
// []byte and a nil reply is not an error.
func normalize(reply interface{}, err error) (interface{}, error) {
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch v := reply.(type) {
	case string:
		return []byte(v), nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i], _ = normalize(e, nil)
		}
		return out, nil
	}
	return reply, nil
}
