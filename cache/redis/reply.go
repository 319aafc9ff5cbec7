package redis

import (
	"github.com/gomodule/redigo/redis"
)

// Both adapters hand back redigo shaped replies, so the redigo converters work for either.
var (
	Bytes   = redis.Bytes
	String  = redis.String
	Int64   = redis.Int64
	Strings = redis.Strings
)
