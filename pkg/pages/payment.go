package pages

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Payment page locators.
const (
	NameOnCardInput   = "input[name='name_on_card']"
	CardNumberInput   = "input[name='card_number']"
	CVCInput          = "input[data-qa='cvc']"
	ExpiryMonthInput  = "input[data-qa='expiry-month']"
	ExpiryYearInput   = "input[data-qa='expiry-year']"
	PayButton         = "button[data-qa='pay-button']"
	OrderConfirmation = "#form"
	ContinueLink      = "a[data-qa='continue-button'], a:has-text('Continue')"
	LogoutLink        = "a[href='/logout']"
)

// ConfirmationText is shown once the order has been paid.
const ConfirmationText = "Congratulations! Your order has been confirmed!"

const logoutVisibleTimeout = 5 * time.Second

// CardDetails is what the payment form takes.
type CardDetails struct {
	Name   string
	Number string
	CVC    string
	Month  string
	Year   string
}

// Validate reports every empty field.
func (c CardDetails) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", c.Name},
		{"number", c.Number},
		{"cvc", c.CVC},
		{"month", c.Month},
		{"year", c.Year},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("card details missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// PaymentPage covers /payment and the order confirmation.
type PaymentPage struct {
	*BasePage
}

// NewPaymentPage wraps base.
func NewPaymentPage(base *BasePage) *PaymentPage {
	return &PaymentPage{BasePage: base}
}

// FillCardDetails fills every card field.
func (p *PaymentPage) FillCardDetails(card CardDetails) error {
	if err := card.Validate(); err != nil {
		return err
	}
	fields := []struct{ selector, value string }{
		{NameOnCardInput, card.Name},
		{CardNumberInput, card.Number},
		{CVCInput, card.CVC},
		{ExpiryMonthInput, card.Month},
		{ExpiryYearInput, card.Year},
	}
	for _, f := range fields {
		if err := p.Fill(f.selector, f.value); err != nil {
			return err
		}
	}
	return nil
}

// PayAndConfirm submits payment and waits for the confirmation message.
func (p *PaymentPage) PayAndConfirm() error {
	if err := p.Click(PayButton); err != nil {
		return err
	}
	return p.ExpectText(OrderConfirmation, ConfirmationText, ExpectTimeout)
}

// ContinueAfterPayment clicks Continue on the confirmation page.
func (p *PaymentPage) ContinueAfterPayment() error {
	if err := p.page.Click(ContinueLink, p.timeout); err != nil {
		return fmt.Errorf("failed to continue after payment: %w", err)
	}
	return p.page.WaitLoad(p.timeout)
}

// Logout clicks Logout, or opens /login directly when the session has
// already been dropped and the link never shows.
func (p *PaymentPage) Logout() error {
	if err := p.page.WaitVisible(LogoutLink, logoutVisibleTimeout); err == nil {
		if err := p.page.Click(LogoutLink, logoutVisibleTimeout); err == nil {
			return p.page.WaitLoad(p.timeout)
		}
	}

	p.log.Info("logout link not available, session already gone", zap.String("url", p.page.URL()))
	if _, err := p.Goto("/login"); err != nil {
		return err
	}
	return nil
}

// VerifyOnLoginPage asserts both login page headings are visible.
func (p *PaymentPage) VerifyOnLoginPage() error {
	if err := p.ExpectVisible(LoginHeading, ExpectTimeout); err != nil {
		return err
	}
	return p.ExpectVisible(SignupHeading, ExpectTimeout)
}
