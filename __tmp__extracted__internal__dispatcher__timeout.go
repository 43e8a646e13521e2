package dispatcher

import (
	"context"
	"time"
)

// Invoke runs fn under a deadline of timeout, returning a Timeout Failure
// if the deadline expires first. fn's own ctx is cancelled on expiry so
// the in-flight browser call or HTTP fetch aborts promptly (spec.md §5:
// "timeouts must be enforced at the I/O boundary ... so cancellation is
// effective"), not just at this outer wall clock.
func Invoke(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value interface{}
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, NewFailure(Timeout, "tool call exceeded its configured deadline", "narrow the selector/url scope or raise the tool's timeout override")
	}
}


