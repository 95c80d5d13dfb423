package exam

import "context"

// Retry calls fn up to attempts times and returns the first value fn reports
// as ok. An error from fn or a cancelled context stops immediately. When every
// attempt comes back empty, exhausted is returned.
func Retry[T any](ctx context.Context, attempts int, fn func(ctx context.Context) (T, bool, error), exhausted error) (T, error) {
	var zero T
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, ok, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
	}
	return zero, exhausted
}
