package localcache

import (
	"errors"
	"time"
)

var ErrKeyNotExists = errors.New("key is not exists")

// MemoryStore is an in-process near tier in front of Redis.
type MemoryStore interface {
	Set(key string, val []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	Del(key string)
}
