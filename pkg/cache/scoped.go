package cache

import (
	"context"
	"time"
)

type namespaced struct {
	inner  Cache
	prefix string
}

// Namespaced returns a view of inner whose keys are prefixed with prefix.
// Providers sharing one backend use it to keep their entries apart. A nil
// inner yields a NullCache view.
//
//	cdnjs := cache.Namespaced(kv, "cdnjs:")
//	npm := cache.Namespaced(kv, "npm:")
func Namespaced(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &namespaced{inner: inner, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// Close does not close the shared backend.
func (n *namespaced) Close() error { return nil }
