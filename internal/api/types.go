package api

// Product is a catalog entry.
type Product struct {
	ID        int     `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Price     float64 `json:"price" yaml:"price"`
	Inventory int     `json:"inventory" yaml:"inventory"`
}

// Message is a chat message. Timestamp is in Unix milliseconds.
type Message struct {
	ID         string `json:"id"`
	ThreadID   string `json:"threadId"`
	ThreadName string `json:"threadName"`
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	IsRead     bool   `json:"isRead"`
}

// ThreadRef identifies the thread a new message belongs to.
type ThreadRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartLine is one product in a purchase.
type CartLine struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Items []CartLine `json:"items"`
}

// ProductListResponse is the body of GET /api/products.
type ProductListResponse struct {
	Products []Product `json:"products"`
}
