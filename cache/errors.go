package cache

import "errors"

var (
	ErrKeyNotExists     = errors.New("key is not exists")
	ErrUnsupportedValue = errors.New("value must be string, []byte, integer or float")
)
