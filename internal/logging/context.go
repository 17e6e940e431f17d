package logging

import (
	"context"
	"sync"
)

type attrsKey struct{}

// requestAttrs collects key/value pairs added by handlers further down the
// chain so the request log line can carry them.
type requestAttrs struct {
	mu   sync.Mutex
	args []any
}

// WithRequestAttrs returns a context that AddRequestAttrs can annotate.
func WithRequestAttrs(ctx context.Context) context.Context {
	return context.WithValue(ctx, attrsKey{}, &requestAttrs{})
}

// AddRequestAttrs appends key/value pairs to the request log line. It is a
// no-op when ctx was not prepared with WithRequestAttrs.
func AddRequestAttrs(ctx context.Context, args ...any) {
	ra, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return
	}
	ra.mu.Lock()
	ra.args = append(ra.args, args...)
	ra.mu.Unlock()
}

// RequestAttrs returns the pairs added so far.
func RequestAttrs(ctx context.Context) []any {
	ra, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return nil
	}
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return append([]any(nil), ra.args...)
}
