package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCard = CardDetails{
	Name:   "Jane Tester",
	Number: "4111111111111111",
	CVC:    "123",
	Month:  "12",
	Year:   "2030",
}

func TestCardDetails_Validate(t *testing.T) {
	assert.NoError(t, testCard.Validate())

	err := CardDetails{Name: "Jane", Month: " "}.Validate()
	require.Error(t, err)
	assert.EqualError(t, err, "card details missing: number, cvc, month, year")
}

func TestPaymentPage_FillCardDetails(t *testing.T) {
	base, fp, _ := newTestBase(t)
	fp.show(NameOnCardInput, CardNumberInput, CVCInput, ExpiryMonthInput, ExpiryYearInput)

	require.NoError(t, NewPaymentPage(base).FillCardDetails(testCard))

	assert.Equal(t, map[string]string{
		NameOnCardInput:  "Jane Tester",
		CardNumberInput:  "4111111111111111",
		CVCInput:         "123",
		ExpiryMonthInput: "12",
		ExpiryYearInput:  "2030",
	}, fp.fills)
}

func TestPaymentPage_FillCardDetailsRejectsIncomplete(t *testing.T) {
	base, fp, _ := newTestBase(t)

	err := NewPaymentPage(base).FillCardDetails(CardDetails{Name: "Jane"})
	require.Error(t, err)
	assert.Empty(t, fp.calls)
}

func TestPaymentPage_PayAndConfirm(t *testing.T) {
	base, fp, _ := newTestBase(t)
	fp.show(PayButton)
	fp.onClick = func(sel string) {
		if sel == PayButton {
			fp.texts[OrderConfirmation] = "Order Placed! " + ConfirmationText
			fp.show(OrderConfirmation)
		}
	}

	require.NoError(t, NewPaymentPage(base).PayAndConfirm())
}

func TestPaymentPage_PayAndConfirmWithoutConfirmation(t *testing.T) {
	base, fp, _ := newTestBase(t)
	fp.show(PayButton, OrderConfirmation)
	fp.texts[OrderConfirmation] = "Payment failed"

	err := NewPaymentPage(base).PayAndConfirm()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Payment failed")
}

func TestPaymentPage_ContinueAfterPayment(t *testing.T) {
	base, fp, _ := newTestBase(t)
	payment := NewPaymentPage(base)

	err := payment.ContinueAfterPayment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to continue after payment")

	fp.show(ContinueLink)
	require.NoError(t, payment.ContinueAfterPayment())
	assert.Equal(t, []string{ContinueLink}, fp.clicks)
}

func TestPaymentPage_Logout(t *testing.T) {
	t.Run("link visible", func(t *testing.T) {
		base, fp, _ := newTestBase(t)
		fp.show(LogoutLink)

		require.NoError(t, NewPaymentPage(base).Logout())
		assert.Equal(t, []string{LogoutLink}, fp.clicks)
		assert.Empty(t, fp.gotos)
	})

	t.Run("session already gone", func(t *testing.T) {
		base, fp, _ := newTestBase(t)

		require.NoError(t, NewPaymentPage(base).Logout())
		assert.Equal(t, []string{testBaseURL + "/login"}, fp.gotos)
	})
}

func TestPaymentPage_VerifyOnLoginPage(t *testing.T) {
	base, fp, _ := newTestBase(t)
	payment := NewPaymentPage(base)

	fp.show(LoginHeading)
	err := payment.VerifyOnLoginPage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), SignupHeading)

	fp.show(SignupHeading)
	assert.NoError(t, payment.VerifyOnLoginPage())
}
