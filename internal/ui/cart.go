package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/apps/cart"
	"github.com/five82/statekit/internal/store"
)

type cartView struct {
	Products   []api.Product
	Lines      []cart.CartProduct
	TotalItems int
	Total      float64
	Status     cart.CheckoutStatus
}

type cartScreen struct {
	vm          cartView
	cursor      int
	checkingOut bool
}

// checkoutDoneMsg reports that a checkout call returned.
type checkoutDoneMsg struct{}

func (cartScreen) title() string { return "shopping cart" }

func (cartScreen) init(e env) tea.Cmd {
	return dispatch(e, cart.GetAllProducts)
}

func (cartScreen) project(s *store.Store, tree store.Tree) any {
	g := s.Getters()
	lines, _ := cart.CartProducts(g)
	items, _ := cart.CartTotalItems(g)
	total, _ := cart.CartTotalPrice(g)
	return cartView{
		Products:   cart.Products(tree),
		Lines:      lines,
		TotalItems: items,
		Total:      total,
		Status:     cart.Cart(tree).CheckoutStatus,
	}
}

func (c cartScreen) update(e env, msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if vm, ok := msg.View.(cartView); ok {
			c.vm = vm
			c.cursor = moveCursor(c.cursor, 0, len(vm.Products))
		}
	case checkoutDoneMsg:
		c.checkingOut = false
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, e.keys.Up):
			c.cursor = moveCursor(c.cursor, -1, len(c.vm.Products))
		case key.Matches(msg, e.keys.Down):
			c.cursor = moveCursor(c.cursor, 1, len(c.vm.Products))
		case key.Matches(msg, e.keys.AddToCart):
			p, ok := c.selected()
			if !ok || p.Inventory <= 0 {
				return c, nil
			}
			return c, dispatchNotice(e, func(ctx context.Context, s *store.Store) (string, error) {
				added, err := cart.AddProductToCart(ctx, s, p)
				if err != nil || added {
					return "", err
				}
				return p.Title + " is sold out", nil
			})
		case key.Matches(msg, e.keys.Checkout):
			if c.checkingOut || len(c.vm.Lines) == 0 {
				return c, nil
			}
			c.checkingOut = true
			return c, checkoutCmd(e, c.vm.Lines)
		}
	}
	return c, nil
}

func checkoutCmd(e env, lines []cart.CartProduct) tea.Cmd {
	return tea.Sequence(
		dispatch(e, func(ctx context.Context, s *store.Store) error {
			_, err := cart.Checkout(ctx, s, lines)
			return err
		}),
		func() tea.Msg { return checkoutDoneMsg{} },
	)
}

func (c cartScreen) selected() (api.Product, bool) {
	if c.cursor < 0 || c.cursor >= len(c.vm.Products) {
		return api.Product{}, false
	}
	return c.vm.Products[c.cursor], true
}

func (c cartScreen) view(f frame) string {
	width := maxInt(f.width-2, 40)
	products := f.styles.Panel.Width(width).Render(c.renderProducts(f))
	basket := f.styles.Panel.Width(width).Render(c.renderCart(f))
	return lipgloss.JoinVertical(lipgloss.Left, products, basket)
}

func (c cartScreen) renderProducts(f frame) string {
	styles := f.styles
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Products"))
	if len(c.vm.Products) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Loading catalog..."))
		return b.String()
	}

	titleWidth := 0
	for _, p := range c.vm.Products {
		titleWidth = maxInt(titleWidth, len([]rune(p.Title)))
	}
	for i, p := range c.vm.Products {
		b.WriteString("\n")
		line := fmt.Sprintf("%s  %10s  x %d", padRight(p.Title, titleWidth), formatPrice(p.Price), p.Inventory)
		switch {
		case i == c.cursor:
			b.WriteString(styles.Selected.Render("> " + line))
		case p.Inventory <= 0:
			b.WriteString(styles.FaintText.Render("  " + line + "  sold out"))
		default:
			b.WriteString(styles.Text.Render("  " + line))
		}
	}
	return b.String()
}

func (c cartScreen) renderCart(f frame) string {
	styles := f.styles
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Your Cart"))
	b.WriteString("\n")

	if len(c.vm.Lines) == 0 {
		b.WriteString(styles.MutedText.Render("Please add some products to cart."))
	}
	for _, line := range c.vm.Lines {
		b.WriteString(styles.Text.Render(fmt.Sprintf("%s - %s x %d", line.Title, formatPrice(line.Price), line.Quantity)))
		b.WriteString("\n")
	}
	if len(c.vm.Lines) > 0 {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d %s", c.vm.TotalItems, plural(c.vm.TotalItems, "item", "items"))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render("Total: " + formatPrice(c.vm.Total)))

	switch {
	case c.checkingOut:
		b.WriteString("  ")
		b.WriteString(styles.WarningText.Render("Checking out..."))
	case c.vm.Status != cart.StatusEmpty:
		b.WriteString("  ")
		label := "Checkout " + string(c.vm.Status)
		if c.vm.Status == cart.StatusFailed {
			label += ", try again"
		}
		b.WriteString(styles.StatusStyle(string(c.vm.Status)).Render(label))
	}
	return b.String()
}

func (cartScreen) bindings(k keyMap) []key.Binding {
	return []key.Binding{k.Up, k.Down, k.AddToCart, k.Checkout}
}

func (cartScreen) capturing() bool { return false }
