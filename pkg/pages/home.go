package pages

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Home page locators.
const (
	SignupLoginLink = "a[href='/login']"
	LoggedInUser    = "//a[contains(text(),'Logged in as')]"
	ProductsLink    = "a[href='/products']"
	CartLink        = "a[href='/view_cart']"
	ContactUsLink   = "a[href='/contact_us']"
	HomeLogo        = "img[alt='Website for automation practice']"
)

// HomeTitle is the document title of the landing page.
const HomeTitle = "Automation Exercise"

// HomePage covers the landing page and the header navigation.
type HomePage struct {
	*BasePage
}

// NewHomePage wraps base.
func NewHomePage(base *BasePage) *HomePage {
	return &HomePage{BasePage: base}
}

// Open navigates to the site root.
func (h *HomePage) Open() error {
	if _, err := h.Goto("/"); err != nil {
		return fmt.Errorf("failed to open home page: %w", err)
	}
	return nil
}

// NavigateToLogin clicks Signup / Login. If the login form does not show
// within 10s (an ad overlay swallowed the click) it navigates to /login
// directly and requires the form within 15s.
func (h *HomePage) NavigateToLogin() error {
	if err := h.Click(SignupLoginLink); err != nil {
		return err
	}

	if err := h.page.WaitVisible(LoginEmailInput, 10*time.Second); err == nil {
		return nil
	}

	h.log.Warn("login form not visible after click, navigating directly to /login")
	if _, err := h.Goto("/login"); err != nil {
		return err
	}
	if err := h.page.WaitVisible(LoginEmailInput, 15*time.Second); err != nil {
		return fmt.Errorf("login form not shown: %w", err)
	}
	return nil
}

// VerifyLoggedIn asserts the header shows "Logged in as <username>".
func (h *HomePage) VerifyLoggedIn(username string) error {
	return h.ExpectText(LoggedInUser, username, ExpectTimeout)
}

// IsLoggedIn reports whether the "Logged in as" marker is visible now.
func (h *HomePage) IsLoggedIn() (bool, error) {
	return h.page.IsVisible(LoggedInUser)
}

// NavigateToProducts opens the product listing.
func (h *HomePage) NavigateToProducts() error {
	return h.Click(ProductsLink)
}

// NavigateToCart opens the shopping cart.
func (h *HomePage) NavigateToCart() error {
	return h.Click(CartLink)
}

// NavigateToContactUs opens the contact form.
func (h *HomePage) NavigateToContactUs() error {
	return h.Click(ContactUsLink)
}

// VerifyLoaded asserts the landing page title and logo.
func (h *HomePage) VerifyLoaded(timeout time.Duration) error {
	var title string
	ok := h.poll(h.orDefault(timeout), func() bool {
		t, err := h.page.Title()
		title = t
		return err == nil && t == HomeTitle
	})
	if !ok {
		return fmt.Errorf("expected title %q, got %q", HomeTitle, title)
	}
	if err := h.ExpectVisible(HomeLogo, timeout); err != nil {
		h.log.Debug("home logo missing", zap.String("url", h.page.URL()))
		return err
	}
	return nil
}
