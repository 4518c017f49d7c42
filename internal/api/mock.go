package api

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// DefaultShopLatency and DefaultChatLatency match the simulated server
	// round trips of the demo backends.
	DefaultShopLatency = 100 * time.Millisecond
	DefaultChatLatency = 16 * time.Millisecond

	DefaultFailureRate = 0.5

	// Author is the name attached to messages created by the local user.
	Author = "Evan"
)

// Mock is an in-process Shop and Chat with simulated latency and random
// checkout failures.
type Mock struct {
	ShopLatency time.Duration
	ChatLatency time.Duration
	// FailureRate is the probability that Buy fails, in [0, 1].
	FailureRate float64
	Rand        *rand.Rand
	Now         func() time.Time

	mu   sync.Mutex
	seed seedData
}

var (
	_ Shop = (*Mock)(nil)
	_ Chat = (*Mock)(nil)
)

// NewMock returns a mock loaded with the embedded catalog and chat history.
func NewMock() (*Mock, error) {
	seed, err := parseSeed(seedYAML)
	if err != nil {
		return nil, err
	}
	return &Mock{
		ShopLatency: DefaultShopLatency,
		ChatLatency: DefaultChatLatency,
		FailureRate: DefaultFailureRate,
		Rand:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		Now:         time.Now,
		seed:        seed,
	}, nil
}

// Products returns a copy of the catalog.
func (m *Mock) Products(ctx context.Context) ([]Product, error) {
	if err := wait(ctx, m.ShopLatency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Product(nil), m.seed.Products...), nil
}

// Buy fails with ErrCheckout with probability FailureRate.
func (m *Mock) Buy(ctx context.Context, items []CartLine) error {
	if err := wait(ctx, m.ShopLatency); err != nil {
		return err
	}
	if m.float64() < m.FailureRate {
		return fmt.Errorf("buy %d items: %w", len(items), ErrCheckout)
	}
	return nil
}

// Messages returns the seed chat history.
func (m *Mock) Messages(ctx context.Context) ([]Message, error) {
	if err := wait(ctx, m.ChatLatency); err != nil {
		return nil, err
	}
	return m.seed.messagesAt(m.now()), nil
}

// CreateMessage builds an unread message authored by the local user.
func (m *Mock) CreateMessage(ctx context.Context, text string, thread ThreadRef) (Message, error) {
	ts := m.now().UnixMilli()
	msg := Message{
		ID:         fmt.Sprintf("m_%d", ts),
		ThreadID:   thread.ID,
		ThreadName: thread.Name,
		AuthorName: Author,
		Text:       text,
		Timestamp:  ts,
	}
	if err := wait(ctx, m.ChatLatency); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Incoming returns a canned reply from a seed author in a random thread.
func (m *Mock) Incoming(ctx context.Context) (Message, error) {
	if err := wait(ctx, m.ChatLatency); err != nil {
		return Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.seed.Messages) == 0 || len(m.seed.Replies) == 0 {
		return Message{}, fmt.Errorf("no seed messages to reply to")
	}
	src := m.seed.Messages[m.Rand.IntN(len(m.seed.Messages))]
	ts := m.now().UnixMilli()
	return Message{
		ID:         fmt.Sprintf("m_%d", ts),
		ThreadID:   src.ThreadID,
		ThreadName: src.ThreadName,
		AuthorName: src.Author,
		Text:       m.seed.Replies[m.Rand.IntN(len(m.seed.Replies))],
		Timestamp:  ts,
	}, nil
}

func (m *Mock) float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rand.Float64()
}

func (m *Mock) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
