//go:build e2e

package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/pages"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

// TestOrderPlacement walks login, cart, checkout, payment and logout.
func TestOrderPlacement(t *testing.T) {
	suite.Tags(t, "smoke", "regression", "checkout")
	user := suite.RequireUser(t)
	card := suite.RequireCard(t)
	t.Parallel()
	ui := suite.NewUI(t)

	// Login
	require.NoError(t, ui.Home().NavigateToLogin())
	require.NoError(t, ui.Login.Login(user.Email, user.Password))

	// Cart
	require.NoError(t, ui.Product.AddProductViaDetailPage(pages.DefaultProductID, 0))
	require.NoError(t, ui.Cart.NavigateToCart())
	require.NoError(t, ui.Cart.VerifyHasItems(0))
	require.NoError(t, ui.Cart.ProceedToCheckout())

	// Checkout
	require.NoError(t, ui.Checkout.EnsureOnCheckout())
	require.NoError(t, ui.Checkout.PlaceOrder())

	// Payment
	require.NoError(t, ui.Payment.FillCardDetails(card))
	require.NoError(t, ui.Payment.PayAndConfirm())

	// Logout
	require.NoError(t, ui.Payment.ContinueAfterPayment())
	require.NoError(t, ui.Payment.Logout())
	require.NoError(t, ui.Payment.VerifyOnLoginPage())
}
