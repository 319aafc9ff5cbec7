package localcache

import (
	"sync"
	"time"
)

// SimpleMemoryStore is a map with one expiry timer per key.
type SimpleMemoryStore struct {
	store  map[string][]byte
	mutex  sync.Mutex
	timers map[string]*time.Timer
}

func NewSimpleMemoryStore() *SimpleMemoryStore {
	return &SimpleMemoryStore{
		store:  make(map[string][]byte),
		timers: make(map[string]*time.Timer),
	}
}

func (s *SimpleMemoryStore) Set(key string, val []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stopTimer(key)
	s.store[key] = val

	if ttl > 0 {
		var timer *time.Timer
		timer = time.AfterFunc(ttl, func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()
			// 已被重新Set的key不能被旧timer删掉
			if s.timers[key] != timer {
				return
			}
			delete(s.store, key)
			delete(s.timers, key)
		})
		s.timers[key] = timer
	}
	return nil
}

func (s *SimpleMemoryStore) Get(key string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	val, found := s.store[key]
	if !found {
		return nil, ErrKeyNotExists
	}
	return val, nil
}

func (s *SimpleMemoryStore) Del(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stopTimer(key)
	delete(s.store, key)
}

func (s *SimpleMemoryStore) stopTimer(key string) {
	if timer, found := s.timers[key]; found {
		timer.Stop()
		delete(s.timers, key)
	}
}
