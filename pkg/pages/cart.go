package pages

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cart locators.
const (
	CartItems         = "#cart_items tbody tr"
	ProceedToCheckout = ".check_out"
	CartEmptyMessage  = "//p[contains(text(),'Cart is empty')]"
)

// CartItemsTimeout is how long VerifyHasItems waits for a product row.
const CartItemsTimeout = 15 * time.Second

// CartPage covers /view_cart.
type CartPage struct {
	*BasePage
}

// NewCartPage wraps base.
func NewCartPage(base *BasePage) *CartPage {
	return &CartPage{BasePage: base}
}

// ItemsCount returns the number of product rows (0 if empty).
func (c *CartPage) ItemsCount() (int, error) {
	n, err := c.page.Count(CartItems)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return n, nil
}

// ProceedToCheckout clicks "Proceed To Checkout".
func (c *CartPage) ProceedToCheckout() error {
	return c.Click(ProceedToCheckout)
}

// IsCartEmpty reports whether the "Cart is empty" message is present.
func (c *CartPage) IsCartEmpty() (bool, error) {
	n, err := c.page.Count(CartEmptyMessage)
	if err != nil {
		return false, fmt.Errorf("failed to look up empty cart message: %w", err)
	}
	return n > 0, nil
}

// NavigateToCart opens the cart directly.
func (c *CartPage) NavigateToCart() error {
	if _, err := c.Goto("/view_cart"); err != nil {
		return fmt.Errorf("failed to open cart: %w", err)
	}
	return nil
}

// VerifyHasItems waits for at least one product row. When none shows up it
// reloads once and waits again; Firefox sometimes renders the cart before
// the session has the item.
func (c *CartPage) VerifyHasItems(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = CartItemsTimeout
	}
	if err := c.ExpectVisible(CartItems, timeout); err == nil {
		return nil
	}

	c.log.Warn("cart items not visible, reloading", zap.String("url", c.page.URL()))
	if err := c.page.Reload(); err != nil {
		return err
	}
	if err := c.ExpectVisible(CartItems, timeout); err != nil {
		return fmt.Errorf("cart has no items: %w", err)
	}
	return nil
}
