package bridge

import "context"

// Async returns a non-blocking function that forwards values to deliver on
// a separate goroutine. Only the newest undelivered value is kept; older
// ones are dropped. The goroutine exits when ctx is done.
func Async[T any](ctx context.Context, deliver func(T)) func(T) {
	slot := make(chan T, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-slot:
				deliver(v)
			}
		}
	}()
	return func(v T) {
		for {
			select {
			case slot <- v:
				return
			default:
			}
			select {
			case <-slot:
			default:
			}
		}
	}
}
