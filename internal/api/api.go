package api

import (
	"context"
	"errors"
)

// ErrCheckout reports a rejected purchase.
var ErrCheckout = errors.New("checkout error")

// Shop serves the product catalog and accepts purchases.
type Shop interface {
	Products(ctx context.Context) ([]Product, error)
	Buy(ctx context.Context, items []CartLine) error
}

// Chat serves chat history and creates messages.
type Chat interface {
	Messages(ctx context.Context) ([]Message, error)
	CreateMessage(ctx context.Context, text string, thread ThreadRef) (Message, error)
	// Incoming waits for the next message from another participant.
	Incoming(ctx context.Context) (Message, error)
}
