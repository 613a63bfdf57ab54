package cache

import (
	"context"
	"time"
)

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Backend() string                                          { return BackendNone }
func (Noop) Close() error                                             { return nil }
