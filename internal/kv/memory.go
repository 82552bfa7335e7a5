package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/puzpuzpuz/xsync/v4"
)

func makeInMemoryKV(_ context.Context, _ *config.Config) (KV, error) {
	return inMemoryKV{
		kv: xsync.NewMap[string, *kvValue](),
	}, nil
}

type kvValue struct {
	values [][]byte
	ttl    time.Time
}

func (v *kvValue) expired() bool {
	return !v.ttl.IsZero() && v.ttl.Before(time.Now())
}

type inMemoryKV struct {
	kv *xsync.Map[string, *kvValue]
}

func (kv inMemoryKV) Has(_ context.Context, key string) (bool, error) {
	obj, ok := kv.kv.Load(key)
	if !ok {
		return false, nil
	}
	if obj.expired() {
		kv.kv.Delete(key)
		return false, nil
	}
	return true, nil
}

func (kv inMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := kv.kv.Load(key)
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	if value.expired() {
		kv.kv.Delete(key)
		return nil, fmt.Errorf("key %s has expired", key)
	}
	if len(value.values) == 0 {
		return nil, fmt.Errorf("key %s has no values", key)
	}
	return value.values[0], nil
}

func (kv inMemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.kv.Store(key, &kvValue{values: [][]byte{value}})
	return nil
}

func (kv inMemoryKV) Delete(_ context.Context, key string) error {
	kv.kv.Delete(key)
	return nil
}

func (kv inMemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	value, ok := kv.kv.Load(key)
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	if ttl <= 0 {
		kv.kv.Delete(key)
		return nil
	}
	value.ttl = time.Now().Add(ttl)
	kv.kv.Store(key, value)
	return nil
}

func (kv inMemoryKV) Scan(_ context.Context, _ uint64, match string, count int64) ([]string, uint64, error) {
	keys := make([]string, 0)
	kv.kv.Range(func(key string, value *kvValue) bool {
		if count > 0 && int64(len(keys)) >= count {
			return false
		}
		if value.expired() {
			kv.kv.Delete(key)
			return true
		}
		if match == "" || globMatch(match, key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, 0, nil
}

func (kv inMemoryKV) RPush(_ context.Context, key string, value []byte) (int64, error) {
	existing, _ := kv.kv.Load(key)
	if existing == nil {
		existing = &kvValue{}
	}
	existing.values = append(existing.values, value)
	kv.kv.Store(key, existing)
	return int64(len(existing.values)), nil
}

func (kv inMemoryKV) LDrain(_ context.Context, key string) ([][]byte, error) {
	existing, ok := kv.kv.Load(key)
	if !ok {
		return nil, nil
	}
	kv.kv.Delete(key)
	return existing.values, nil
}

func (kv inMemoryKV) Close() error {
	return nil
}

// globMatch implements the small subset of Redis SCAN's glob syntax this
// package's callers rely on: a single trailing '*' wildcard.
func globMatch(pattern, key string) bool {
	if pattern == key {
		return true
	}
	const wildcard = '*'
	if n := len(pattern); n > 0 && pattern[n-1] == wildcard {
		prefix := pattern[:n-1]
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	}
	return false
}
