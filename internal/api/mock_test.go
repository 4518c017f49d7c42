package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

func instantMock(t *testing.T) *Mock {
	t.Helper()
	m, err := NewMock()
	if err != nil {
		t.Fatalf("NewMock returned error: %v", err)
	}
	m.ShopLatency = 0
	m.ChatLatency = 0
	m.Rand = rand.New(rand.NewPCG(1, 2))
	m.Now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return m
}

func TestMock_ProductsReturnsCatalogCopy(t *testing.T) {
	m := instantMock(t)

	products, err := m.Products(context.Background())
	if err != nil {
		t.Fatalf("Products returned error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(products))
	}
	if products[0].Title != "iPad 4 Mini" || products[0].Inventory != 2 || products[0].Price != 500.01 {
		t.Fatalf("products[0] = %+v", products[0])
	}

	products[0].Inventory = 0
	again, _ := m.Products(context.Background())
	if again[0].Inventory != 2 {
		t.Fatalf("catalog was modified through returned slice: %+v", again[0])
	}
}

func TestMock_BuyFailureRate(t *testing.T) {
	m := instantMock(t)

	m.FailureRate = 0
	if err := m.Buy(context.Background(), nil); err != nil {
		t.Fatalf("Buy with FailureRate 0 returned error: %v", err)
	}
	m.FailureRate = 1
	if err := m.Buy(context.Background(), nil); !errors.Is(err, ErrCheckout) {
		t.Fatalf("Buy with FailureRate 1 = %v, want ErrCheckout", err)
	}
}

func TestMock_LatencyHonoursContext(t *testing.T) {
	m := instantMock(t)
	m.ShopLatency = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Products(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Products = %v, want context.Canceled", err)
	}
}

func TestMock_MessagesAreDatedRelativeToNow(t *testing.T) {
	m := instantMock(t)

	msgs, err := m.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if len(msgs) != 7 {
		t.Fatalf("len(msgs) = %d, want 7", len(msgs))
	}
	if msgs[0].ID != "m_1" || msgs[0].Timestamp != 1_700_000_000_000-99999 {
		t.Fatalf("msgs[0] = %+v", msgs[0])
	}
	if msgs[6].ThreadName != "Bill and Brian" || msgs[6].AuthorName != "Brian" {
		t.Fatalf("msgs[6] = %+v", msgs[6])
	}
}

func TestMock_CreateMessage(t *testing.T) {
	m := instantMock(t)

	msg, err := m.CreateMessage(context.Background(), "hello", ThreadRef{ID: "t_2", Name: "Dave and Bill"})
	if err != nil {
		t.Fatalf("CreateMessage returned error: %v", err)
	}
	if msg.ID != "m_1700000000000" {
		t.Fatalf("ID = %q, want m_1700000000000", msg.ID)
	}
	if msg.AuthorName != "Evan" || msg.ThreadID != "t_2" || msg.IsRead {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestMock_Incoming(t *testing.T) {
	m := instantMock(t)

	msg, err := m.Incoming(context.Background())
	if err != nil {
		t.Fatalf("Incoming returned error: %v", err)
	}
	if !strings.HasPrefix(msg.ThreadID, "t_") || msg.AuthorName == Author || msg.Text == "" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	if _, err := parseSeed([]byte("products: [")); err == nil {
		t.Fatal("parseSeed returned nil error for malformed YAML")
	}
}
