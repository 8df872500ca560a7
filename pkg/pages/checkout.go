package pages

import (
	"time"

	"go.uber.org/zap"
)

// Checkout locators.
const (
	PlaceOrderLink     = "a[href='/payment']"
	CheckoutModalClose = "#checkoutModal .close, #checkoutModal a[href='/login']"
)

const (
	checkoutURLTimeout = 10 * time.Second
	placeOrderTimeout  = 20 * time.Second
)

// CheckoutPage covers /checkout.
type CheckoutPage struct {
	*BasePage
}

// NewCheckoutPage wraps base.
func NewCheckoutPage(base *BasePage) *CheckoutPage {
	return &CheckoutPage{BasePage: base}
}

// EnsureOnCheckout waits for the checkout URL after "Proceed To Checkout".
// WebKit sometimes shows the session-dropped modal instead of navigating;
// in that case the modal is closed and /checkout is opened directly.
func (c *CheckoutPage) EnsureOnCheckout() error {
	if err := c.page.WaitURL("**/checkout**", checkoutURLTimeout); err != nil {
		c.log.Warn("checkout not reached, navigating directly", zap.Error(err))
		if visible, _ := c.page.IsVisible(CheckoutModalClose); visible {
			if err := c.page.Click(CheckoutModalClose, modalCloseTimeout); err != nil {
				c.log.Debug("checkout modal close failed", zap.Error(err))
			}
		}
		if _, err := c.Goto("/checkout"); err != nil {
			return err
		}
	}
	return c.page.WaitLoad(c.timeout)
}

// PlaceOrder follows "Place Order" to the payment page, navigating to
// /payment directly when the link cannot be clicked.
func (c *CheckoutPage) PlaceOrder() error {
	if err := c.clickPlaceOrder(); err != nil {
		c.log.Warn("place order link not clickable, navigating directly", zap.Error(err))
		if _, err := c.Goto("/payment"); err != nil {
			return err
		}
	}
	return c.page.WaitLoad(c.timeout)
}

func (c *CheckoutPage) clickPlaceOrder() error {
	if err := c.page.WaitVisible(PlaceOrderLink, placeOrderTimeout); err != nil {
		return err
	}
	if err := c.page.ScrollIntoView(PlaceOrderLink, placeOrderTimeout); err != nil {
		return err
	}
	return c.page.Click(PlaceOrderLink, placeOrderTimeout)
}
