package cache

import (
	"context"
	"time"
)

// NullCache remembers nothing, so every metadata lookup goes to the
// repository. The CLI picks it for --no-cache and when no cache directory
// can be located.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
