package store

import (
	"context"
	"fmt"
)

// Mutation adapts a handler with a typed payload. A nil payload becomes P's
// zero value; any other type mismatch fails with ErrPayloadType.
func Mutation[S, P any](fn func(state *S, payload P) error) MutationFunc[S] {
	return func(state *S, payload any) error {
		p, err := payloadAs[P](payload)
		if err != nil {
			return err
		}
		return fn(state, p)
	}
}

// Action adapts an action with a typed payload.
func Action[S, P any](fn func(ctx context.Context, ac ActionContext[S], payload P) (any, error)) ActionFunc[S] {
	return func(ctx context.Context, ac ActionContext[S], payload any) (any, error) {
		p, err := payloadAs[P](payload)
		if err != nil {
			return nil, err
		}
		return fn(ctx, ac, p)
	}
}

func payloadAs[P any](payload any) (P, error) {
	var zero P
	if payload == nil {
		return zero, nil
	}
	p, ok := payload.(P)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrPayloadType, payload, zero)
	}
	return p, nil
}
