package pages

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Product listing and detail locators.
const (
	ProductItem           = ".product-image-wrapper"
	AddToCartButton       = ".add-to-cart"
	ViewCartModalLink     = "a[href='/view_cart']:has-text('View Cart')"
	DetailAddToCartButton = "button.btn-default.cart"
	CartModal             = "#cartModal"
	CartModalClose        = "#cartModal button.close-modal, #cartModal .close"
)

// DefaultProductID is the product the order flow buys.
const DefaultProductID = 33

const (
	detailAddTimeout   = 15 * time.Second
	cartModalTimeout   = 5 * time.Second
	modalCloseTimeout  = 2 * time.Second
	viewCartTimeout    = 10 * time.Second
	productRetryDelay  = 2 * time.Second
	modalSettleDelay   = 500 * time.Millisecond
	viewCartSettleTime = 300 * time.Millisecond
)

// errModalMissing marks an attempt whose confirmation modal never appeared.
var errModalMissing = errors.New("add-to-cart modal not shown")

// ProductPage covers the product listing and detail pages.
type ProductPage struct {
	*BasePage
}

// NewProductPage wraps base.
func NewProductPage(base *BasePage) *ProductPage {
	return &ProductPage{BasePage: base}
}

// AddProductViaDetailPage adds product id to the cart from its detail page,
// where the add-to-cart button is always visible. Each attempt waits for the
// confirmation modal; 5xx answers and failed attempts are retried after 2s.
func (p *ProductPage) AddProductViaDetailPage(id, maxRetries int) error {
	if id <= 0 {
		id = DefaultProductID
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		final := attempt == maxRetries
		err := p.addFromDetail(id, final)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, errModalMissing) {
			p.log.Warn("add-to-cart modal not shown, retrying", zap.Int("attempt", attempt))
			continue
		}
		p.log.Warn("add product attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("product", id),
			zap.Error(err))
		if !final {
			p.sleep(productRetryDelay)
		}
	}
	return fmt.Errorf("failed to add product %d to cart after %d attempts: %w", id, maxRetries, lastErr)
}

func (p *ProductPage) addFromDetail(id int, final bool) error {
	status, err := p.Goto(fmt.Sprintf("/product_details/%d", id))
	if err != nil {
		return err
	}
	if status >= 500 {
		return fmt.Errorf("server error %d", status)
	}

	p.DismissOverlays()

	if err := p.page.Click(DetailAddToCartButton, detailAddTimeout); err != nil {
		return fmt.Errorf("failed to click add to cart: %w", err)
	}

	if err := p.page.WaitVisible(CartModal, cartModalTimeout); err != nil {
		if !final {
			return errModalMissing
		}
		p.log.Warn("modal not shown on final attempt, proceeding anyway")
	}

	p.closeCartModal()
	p.sleep(modalSettleDelay)
	return nil
}

// closeCartModal closes the add-to-cart modal if it is showing.
func (p *ProductPage) closeCartModal() {
	visible, err := p.page.IsVisible(CartModalClose)
	if err != nil || !visible {
		return
	}
	if err := p.page.Click(CartModalClose, modalCloseTimeout); err != nil {
		p.log.Debug("cart modal close failed", zap.Error(err))
	}
}

// AddProductToCart adds the product at zero-based index from the listing
// page through the hover overlay, then opens the cart. Prefer
// AddProductViaDetailPage: the overlay is unreliable across browsers.
func (p *ProductPage) AddProductToCart(index int) error {
	total, err := p.page.Count(ProductItem)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if index < 0 || index >= total {
		return fmt.Errorf("product index %d out of range (total: %d)", index, total)
	}

	p.DismissOverlays()

	item := nthProduct(index)
	if err := p.page.Hover(item, p.timeout); err != nil {
		return fmt.Errorf("failed to hover product %d: %w", index, err)
	}
	if err := p.page.ForceClick(item + "//" + classXPath("a", "add-to-cart")); err != nil {
		return fmt.Errorf("failed to add product %d: %w", index, err)
	}

	if err := p.page.WaitVisible(ViewCartModalLink, viewCartTimeout); err == nil {
		p.sleep(viewCartSettleTime)
		if err := p.page.Click(ViewCartModalLink, viewCartTimeout); err == nil {
			return nil
		}
	}

	p.log.Warn("view cart modal not available, navigating directly to cart")
	if _, err := p.Goto("/view_cart"); err != nil {
		return err
	}
	return nil
}

// nthProduct selects the product card at zero-based index.
func nthProduct(index int) string {
	return fmt.Sprintf("(//%s)[%d]", classXPath("div", "product-image-wrapper"), index+1)
}
