//go:build e2e

package ui

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/pages"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

func TestHomepageLoads(t *testing.T) {
	suite.Tags(t, "smoke", "regression")
	t.Parallel()
	ui := suite.NewUI(t)

	require.NoError(t, ui.Home().VerifyLoaded(15*time.Second))
	title, err := ui.Page.Title()
	require.NoError(t, err)
	assert.Equal(t, pages.HomeTitle, title)
}

func TestUserRegistration(t *testing.T) {
	suite.Tags(t, "smoke", "regression")
	t.Parallel()
	ui := suite.NewUI(t)

	stamp := time.Now().UnixMilli()
	name := fmt.Sprintf("Test User_%d", stamp)
	email := fmt.Sprintf("testuser_%d@example.com", stamp)

	client := suite.NewAPI(t)
	password := suite.Fixtures(t).API.TemplatePassword()
	t.Cleanup(func() {
		// Best effort: the signup step alone may not have created the account.
		if _, err := client.DeleteAccount(context.Background(), email, password); err != nil {
			t.Logf("cleanup of %s: %v", email, err)
		}
	})

	require.NoError(t, ui.Home().NavigateToLogin())
	require.NoError(t, ui.Login.RegisterNewUser(name, email))

	site, err := url.Parse(suite.Config(t).BaseURL)
	require.NoError(t, err)
	assert.Contains(t, ui.Page.URL(), site.Host)
}

func TestAddToCart(t *testing.T) {
	suite.Tags(t, "smoke", "regression", "cart")
	t.Parallel()
	ui := suite.NewUI(t)

	require.NoError(t, ui.Product.AddProductViaDetailPage(1, 0))
	require.NoError(t, ui.Cart.NavigateToCart())
	require.NoError(t, ui.Cart.VerifyHasItems(0))

	count, err := ui.Cart.ItemsCount()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)
}
