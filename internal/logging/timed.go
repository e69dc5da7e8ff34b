package logging

import (
	"context"
	"time"
)

// Timed runs fn and logs "<op> executed" with its duration in milliseconds.
// A failing fn is logged at Warn together with the error; the error itself
// is returned untouched.
//
//	err := logging.Timed(ctx, log, "recipes.delete", func(ctx context.Context) error {
//	    return svc.Delete(ctx, id, userID)
//	})
func Timed(ctx context.Context, l Logger, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		l.Warn(ctx, op+" failed", "duration_ms", elapsed, "error", err)
		return err
	}
	l.Debug(ctx, op+" executed", "duration_ms", elapsed)
	return nil
}
