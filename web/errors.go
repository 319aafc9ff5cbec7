package web

import "errors"

var ErrEmptyURL = errors.New("url is empty")
