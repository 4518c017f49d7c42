package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/apps/cart"
	"github.com/five82/statekit/internal/store"
)

type fakeShop struct {
	products []api.Product
	buyErr   error
	bought   [][]api.CartLine
}

func (f *fakeShop) Products(context.Context) ([]api.Product, error) {
	return append([]api.Product(nil), f.products...), nil
}

func (f *fakeShop) Buy(_ context.Context, items []api.CartLine) error {
	f.bought = append(f.bought, items)
	return f.buyErr
}

func newStore(t *testing.T, shop *fakeShop) *store.Store {
	t.Helper()
	if shop.products == nil {
		shop.products = []api.Product{
			{ID: 1, Title: "iPad 4 Mini", Price: 500.01, Inventory: 2},
			{ID: 2, Title: "H&M T-Shirt White", Price: 10.99, Inventory: 10},
		}
	}
	s, err := cart.New(cart.Deps{Shop: shop, Strict: true})
	require.NoError(t, err)
	require.NoError(t, cart.GetAllProducts(context.Background(), s))
	return s
}

func TestNew_RequiresShop(t *testing.T) {
	_, err := cart.New(cart.Deps{})
	require.Error(t, err)
}

func TestAddProductToCart_DecrementsInventory(t *testing.T) {
	s := newStore(t, &fakeShop{})
	ctx := context.Background()
	ipad := cart.Products(s.State())[0]

	added, err := cart.AddProductToCart(ctx, s, ipad)
	require.NoError(t, err)
	assert.True(t, added)

	tree := s.State()
	assert.Equal(t, 1, cart.Products(tree)[0].Inventory)
	assert.Equal(t, []cart.CartItem{{ID: 1, Quantity: 1}}, cart.Cart(tree).Items)

	lines, err := cart.CartProducts(s.Getters())
	require.NoError(t, err)
	assert.Equal(t, []cart.CartProduct{{ID: 1, Title: "iPad 4 Mini", Price: 500.01, Quantity: 1}}, lines)
}

func TestAddProductToCart_IncrementsExistingLine(t *testing.T) {
	s := newStore(t, &fakeShop{})
	ctx := context.Background()
	shirt := cart.Products(s.State())[1]

	for i := 0; i < 3; i++ {
		_, err := cart.AddProductToCart(ctx, s, shirt)
		require.NoError(t, err)
	}

	tree := s.State()
	assert.Equal(t, []cart.CartItem{{ID: 2, Quantity: 3}}, cart.Cart(tree).Items)
	assert.Equal(t, 7, cart.Products(tree)[1].Inventory)

	n, err := cart.CartTotalItems(s.Getters())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	total, err := cart.CartTotalPrice(s.Getters())
	require.NoError(t, err)
	assert.InDelta(t, 32.97, total, 1e-9)
}

func TestAddProductToCart_OutOfStockIsIgnored(t *testing.T) {
	s := newStore(t, &fakeShop{})
	ctx := context.Background()
	ipad := cart.Products(s.State())[0]

	for i := 0; i < 2; i++ {
		added, err := cart.AddProductToCart(ctx, s, ipad)
		require.NoError(t, err)
		assert.True(t, added)
	}
	// The stale payload still claims stock; the catalog does not.
	added, err := cart.AddProductToCart(ctx, s, ipad)
	require.NoError(t, err)
	assert.False(t, added)

	tree := s.State()
	assert.Equal(t, 0, cart.Products(tree)[0].Inventory)
	assert.Equal(t, []cart.CartItem{{ID: 1, Quantity: 2}}, cart.Cart(tree).Items)
}

func TestCheckout_Success(t *testing.T) {
	shop := &fakeShop{}
	s := newStore(t, shop)
	ctx := context.Background()
	_, err := cart.AddProductToCart(ctx, s, cart.Products(s.State())[0])
	require.NoError(t, err)

	lines, err := cart.CartProducts(s.Getters())
	require.NoError(t, err)
	status, err := cart.Checkout(ctx, s, lines)
	require.NoError(t, err)

	assert.Equal(t, cart.StatusSuccessful, status)
	st := cart.Cart(s.State())
	assert.Empty(t, st.Items)
	assert.Equal(t, cart.StatusSuccessful, st.CheckoutStatus)
	require.Len(t, shop.bought, 1)
	assert.Equal(t, lines, shop.bought[0])
}

func TestCheckout_FailureKeepsItems(t *testing.T) {
	s := newStore(t, &fakeShop{buyErr: api.ErrCheckout})
	ctx := context.Background()
	_, err := cart.AddProductToCart(ctx, s, cart.Products(s.State())[1])
	require.NoError(t, err)

	var statuses []cart.CheckoutStatus
	s.Subscribe(func(rec store.MutationRecord, _ store.Tree) {
		if rec.Type == "cart/setCheckoutStatus" {
			statuses = append(statuses, rec.Payload.(cart.CheckoutStatus))
		}
	})

	lines, err := cart.CartProducts(s.Getters())
	require.NoError(t, err)
	status, err := cart.Checkout(ctx, s, lines)
	require.NoError(t, err)

	assert.Equal(t, cart.StatusFailed, status)
	st := cart.Cart(s.State())
	assert.Equal(t, []cart.CartItem{{ID: 2, Quantity: 1}}, st.Items)
	assert.Equal(t, cart.StatusFailed, st.CheckoutStatus)
	assert.Equal(t, []cart.CheckoutStatus{cart.StatusEmpty, cart.StatusFailed}, statuses)
}

func TestMutations_RequireQualifiedNames(t *testing.T) {
	s := newStore(t, &fakeShop{})

	err := s.Commit("setCheckoutStatus", cart.StatusFailed)
	assert.True(t, errors.Is(err, store.ErrUnknownMutation))
	assert.NoError(t, s.Commit("cart/setCheckoutStatus", cart.StatusFailed))
}

func TestDecrementUnknownProduct(t *testing.T) {
	s := newStore(t, &fakeShop{})

	err := s.Commit("products/decrementProductInventory", cart.ProductRef{ID: 99})
	assert.True(t, errors.Is(err, cart.ErrUnknownProduct))
	assert.Len(t, cart.Products(s.State()), 2)
}
