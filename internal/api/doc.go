// Package api provides the external data sources the example stores call
// from their actions.
//
// # Overview
//
// Two interfaces describe the backends:
//
//   - Shop: product catalog and checkout
//   - Chat: message history, message creation and incoming replies
//
// # Implementations
//
// Mock implements both in process. Its catalog and chat history are
// embedded YAML (seed.yaml); every call sleeps for the configured latency
// and honours context cancellation. Buy fails with ErrCheckout at the
// configured FailureRate, drawn from the injected Rand, so tests can pin
// the outcome:
//
//	m, _ := api.NewMock()
//	m.ShopLatency = 0
//	m.FailureRate = 0 // always succeed
//
// Remote implements Shop against an HTTP server:
//
//   - GET /api/products: {"products": [...]}
//   - POST /api/checkout: {"items": [...]}, 402 or 409 means the purchase
//     was rejected
//
// All Remote requests carry Accept: application/json and a User-Agent, use
// a 5 second client timeout, and report HTTP errors with the path and
// status code.
package api
