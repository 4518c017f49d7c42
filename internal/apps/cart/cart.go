// Package cart is the shopping-cart example store: a root module hosting
// the namespaced "products" and "cart" modules.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/store"
)

// CheckoutStatus is the outcome of the last checkout.
type CheckoutStatus string

const (
	StatusEmpty      CheckoutStatus = ""
	StatusSuccessful CheckoutStatus = "successful"
	StatusFailed     CheckoutStatus = "failed"
)

// ErrUnknownProduct reports a product id missing from the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// ProductsState is the state of the "products" module.
type ProductsState struct {
	All []api.Product `json:"all"`
}

// CartItem is a product id and how many of it are in the cart.
type CartItem struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// CartState is the state of the "cart" module.
type CartState struct {
	Items          []CartItem     `json:"items"`
	CheckoutStatus CheckoutStatus `json:"checkoutStatus"`
}

// CartProduct is a cart line joined with its catalog entry.
type CartProduct = api.CartLine

// ProductRef identifies a product in mutation payloads.
type ProductRef struct {
	ID int `json:"id"`
}

// Deps configure a cart store.
type Deps struct {
	Shop    api.Shop
	Plugins []store.Plugin
	Strict  bool
	Logger  *slog.Logger
}

// New builds the shopping-cart store.
func New(deps Deps) (*store.Store, error) {
	if deps.Shop == nil {
		return nil, fmt.Errorf("cart: shop is required")
	}
	return store.New(store.Config[store.Empty]{
		Module: store.Module[store.Empty]{
			State: func() store.Empty { return store.Empty{} },
			Modules: map[string]store.Definition{
				"products": productsModule(deps.Shop),
				"cart":     cartModule(deps.Shop),
			},
		},
		Plugins: deps.Plugins,
		Strict:  deps.Strict,
		Logger:  deps.Logger,
	})
}

func productsModule(shop api.Shop) store.Module[ProductsState] {
	return store.Module[ProductsState]{
		Namespaced: true,
		State:      func() ProductsState { return ProductsState{All: []api.Product{}} },
		Mutations: map[string]store.MutationFunc[ProductsState]{
			"setProducts": store.Mutation(func(st *ProductsState, products []api.Product) error {
				st.All = append([]api.Product(nil), products...)
				return nil
			}),
			"decrementProductInventory": store.Mutation(func(st *ProductsState, ref ProductRef) error {
				for i := range st.All {
					if st.All[i].ID == ref.ID {
						if st.All[i].Inventory <= 0 {
							return fmt.Errorf("product %d is out of stock", ref.ID)
						}
						st.All[i].Inventory--
						return nil
					}
				}
				return fmt.Errorf("product %d: %w", ref.ID, ErrUnknownProduct)
			}),
		},
		Actions: map[string]store.ActionFunc[ProductsState]{
			"getAllProducts": func(ctx context.Context, ac store.ActionContext[ProductsState], _ any) (any, error) {
				products, err := shop.Products(ctx)
				if err != nil {
					return nil, fmt.Errorf("fetch products: %w", err)
				}
				return nil, ac.Commit("setProducts", products)
			},
		},
	}
}

func cartModule(shop api.Shop) store.Module[CartState] {
	return store.Module[CartState]{
		Namespaced: true,
		State:      func() CartState { return CartState{Items: []CartItem{}} },
		Getters: map[string]store.GetterFunc[CartState]{
			"cartProducts": func(st CartState, _ store.Getters, root store.Tree, _ store.Getters) (any, error) {
				products, _ := store.StateOf[ProductsState](root, "products")
				out := make([]CartProduct, 0, len(st.Items))
				for _, item := range st.Items {
					p, ok := findProduct(products.All, item.ID)
					if !ok {
						return nil, fmt.Errorf("cart item %d: %w", item.ID, ErrUnknownProduct)
					}
					out = append(out, CartProduct{ID: p.ID, Title: p.Title, Price: p.Price, Quantity: item.Quantity})
				}
				return out, nil
			},
			"cartTotalItems": func(_ CartState, getters store.Getters, _ store.Tree, _ store.Getters) (any, error) {
				lines, err := store.GetAs[[]CartProduct](getters, "cartProducts")
				if err != nil {
					return nil, err
				}
				total := 0
				for _, l := range lines {
					total += l.Quantity
				}
				return total, nil
			},
			"cartTotalPrice": func(_ CartState, getters store.Getters, _ store.Tree, _ store.Getters) (any, error) {
				lines, err := store.GetAs[[]CartProduct](getters, "cartProducts")
				if err != nil {
					return nil, err
				}
				total := 0.0
				for _, l := range lines {
					total += l.Price * float64(l.Quantity)
				}
				return total, nil
			},
		},
		Mutations: map[string]store.MutationFunc[CartState]{
			"pushProductToCart": store.Mutation(func(st *CartState, ref ProductRef) error {
				st.Items = append(st.Items, CartItem{ID: ref.ID, Quantity: 1})
				return nil
			}),
			"incrementItemQuantity": store.Mutation(func(st *CartState, ref ProductRef) error {
				for i := range st.Items {
					if st.Items[i].ID == ref.ID {
						st.Items[i].Quantity++
						return nil
					}
				}
				return fmt.Errorf("cart item %d not found", ref.ID)
			}),
			"setCartItems": store.Mutation(func(st *CartState, items []CartItem) error {
				st.Items = append([]CartItem{}, items...)
				return nil
			}),
			"setCheckoutStatus": store.Mutation(func(st *CartState, status CheckoutStatus) error {
				st.CheckoutStatus = status
				return nil
			}),
		},
		Actions: map[string]store.ActionFunc[CartState]{
			"checkout": store.Action(func(ctx context.Context, ac store.ActionContext[CartState], lines []CartProduct) (any, error) {
				if err := ac.Commit("setCheckoutStatus", StatusEmpty); err != nil {
					return nil, err
				}
				if err := shop.Buy(ctx, lines); err != nil {
					ac.Logger().Info("checkout failed", "items", len(lines), "error", err)
					return StatusFailed, ac.Commit("setCheckoutStatus", StatusFailed)
				}
				if err := ac.Commit("setCartItems", []CartItem{}); err != nil {
					return nil, err
				}
				return StatusSuccessful, ac.Commit("setCheckoutStatus", StatusSuccessful)
			}),
			"addProductToCart": store.Action(func(_ context.Context, ac store.ActionContext[CartState], product api.Product) (any, error) {
				if err := ac.Commit("setCheckoutStatus", StatusEmpty); err != nil {
					return nil, err
				}
				inventory := product.Inventory
				if products, ok := store.StateOf[ProductsState](ac.RootState(), "products"); ok {
					if p, found := findProduct(products.All, product.ID); found {
						inventory = p.Inventory
					}
				}
				if inventory <= 0 {
					return false, nil
				}

				ref := ProductRef{ID: product.ID}
				if hasItem(ac.State().Items, product.ID) {
					if err := ac.Commit("incrementItemQuantity", ref); err != nil {
						return nil, err
					}
				} else if err := ac.Commit("pushProductToCart", ref); err != nil {
					return nil, err
				}
				return true, ac.Commit("products/decrementProductInventory", ref, store.Root())
			}),
		},
	}
}

func findProduct(all []api.Product, id int) (api.Product, bool) {
	for _, p := range all {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

func hasItem(items []CartItem, id int) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}
