package cart

import (
	"context"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/store"
)

// GetAllProducts loads the catalog into the products module.
func GetAllProducts(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "products/getAllProducts", nil)
	return err
}

// AddProductToCart adds one unit of p if it is in stock and reports whether
// it was added.
func AddProductToCart(ctx context.Context, s *store.Store, p api.Product) (bool, error) {
	v, err := s.Dispatch(ctx, "cart/addProductToCart", p)
	added, _ := v.(bool)
	return added, err
}

// Checkout buys the given lines. A rejected purchase is not an error; it is
// reported through the returned status.
func Checkout(ctx context.Context, s *store.Store, lines []CartProduct) (CheckoutStatus, error) {
	v, err := s.Dispatch(ctx, "cart/checkout", lines)
	status, _ := v.(CheckoutStatus)
	return status, err
}

// CartProducts reads the cart joined with the catalog.
func CartProducts(g store.Getters) ([]CartProduct, error) {
	return store.GetAs[[]CartProduct](g, "cart/cartProducts")
}

// CartTotalItems reads the number of units in the cart.
func CartTotalItems(g store.Getters) (int, error) {
	return store.GetAs[int](g, "cart/cartTotalItems")
}

// CartTotalPrice reads the cart total.
func CartTotalPrice(g store.Getters) (float64, error) {
	return store.GetAs[float64](g, "cart/cartTotalPrice")
}

// Products extracts the catalog from a snapshot.
func Products(tree store.Tree) []api.Product {
	st, _ := store.StateOf[ProductsState](tree, "products")
	return st.All
}

// Cart extracts the cart module state from a snapshot.
func Cart(tree store.Tree) CartState {
	st, _ := store.StateOf[CartState](tree, "cart")
	return st
}
