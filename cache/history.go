package cache

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/codingWhat/drills/cache/redis"
)

type StoreFunc func(ctx context.Context, data interface{}) (string, error)

func inputsKey(name string) string  { return name + ":inputs" }
func outputsKey(name string) string { return name + ":outputs" }

// CountCalls increments the counter at name before every call to next.
func CountCalls(client redis.Client, name string, next StoreFunc) StoreFunc {
	return func(ctx context.Context, data interface{}) (string, error) {
		if _, err := client.Do(ctx, "INCR", name); err != nil {
			return "", errors.WithMessagef(err, "incr %s", name)
		}
		return next(ctx, data)
	}
}

// CallHistory appends the formatted arguments to name:inputs and, once next
// succeeds, its result to name:outputs.
func CallHistory(client redis.Client, name string, next StoreFunc) StoreFunc {
	return func(ctx context.Context, data interface{}) (string, error) {
		if _, err := client.Do(ctx, "RPUSH", inputsKey(name), formatArgs(data)); err != nil {
			return "", errors.WithMessagef(err, "rpush %s", inputsKey(name))
		}
		result, err := next(ctx, data)
		if err != nil {
			return "", err
		}
		if _, err := client.Do(ctx, "RPUSH", outputsKey(name), result); err != nil {
			return "", errors.WithMessagef(err, "rpush %s", outputsKey(name))
		}
		return result, nil
	}
}

// Replay prints how many times name was called followed by every recorded
// input/output pair. Count, inputs and outputs are read in one round trip.
func Replay(ctx context.Context, client redis.Client, name string, w io.Writer) error {
	p, err := client.Pipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	_ = p.Send("GET", name)
	_ = p.Send("LRANGE", inputsKey(name), 0, -1)
	_ = p.Send("LRANGE", outputsKey(name), 0, -1)
	if err := p.Flush(); err != nil {
		return errors.WithMessage(err, "replay")
	}

	var calls int64
	reply, err := p.Receive()
	if err != nil {
		return err
	}
	if reply != nil {
		if calls, err = redis.Int64(reply, nil); err != nil {
			return err
		}
	}
	inputs, err := redis.Strings(p.Receive())
	if err != nil {
		return err
	}
	outputs, err := redis.Strings(p.Receive())
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", name, calls); err != nil {
		return err
	}
	for i := 0; i < len(inputs) && i < len(outputs); i++ {
		if _, err := fmt.Fprintf(w, "%s(*%s) -> %s\n", name, inputs[i], outputs[i]); err != nil {
			return err
		}
	}
	return nil
}

func formatArgs(args ...interface{}) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		case []byte:
			parts[i] = fmt.Sprintf("b%q", v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
