package pages

import (
	"fmt"
)

// Login and signup form locators.
const (
	LoginEmailInput    = "input[data-qa='login-email']"
	LoginPasswordInput = "input[data-qa='login-password']"
	LoginButton        = "button[data-qa='login-button']"

	SignupNameInput  = "input[data-qa='signup-name']"
	SignupEmailInput = "input[data-qa='signup-email']"
	SignupButton     = "button[data-qa='signup-button']"

	LoginHeading  = "//h2[normalize-space()='Login to your account']"
	SignupHeading = "//h2[normalize-space()='New User Signup!']"
)

// LoggedInMarker is the text shown in the header once logged in.
const LoggedInMarker = "Logged in as"

// invalidEmailJS reports whether the email input fails HTML5 validation.
const invalidEmailJS = `function (el) {
	const input = el || this;
	return !input.validity.valid;
}`

// LoginPage covers the login and signup forms at /login.
type LoginPage struct {
	*BasePage
}

// NewLoginPage wraps base.
func NewLoginPage(base *BasePage) *LoginPage {
	return &LoginPage{BasePage: base}
}

// Login submits the login form.
func (l *LoginPage) Login(email, password string) error {
	if err := l.Fill(LoginEmailInput, email); err != nil {
		return err
	}
	if err := l.Fill(LoginPasswordInput, password); err != nil {
		return err
	}
	return l.Click(LoginButton)
}

// RegisterNewUser submits the signup form with name and email.
func (l *LoginPage) RegisterNewUser(name, email string) error {
	if err := l.Fill(SignupNameInput, name); err != nil {
		return err
	}
	if err := l.Fill(SignupEmailInput, email); err != nil {
		return err
	}
	return l.Click(SignupButton)
}

// EmailFieldInvalid reports whether the browser considers the login email
// input invalid (e.g. empty required field).
func (l *LoginPage) EmailFieldInvalid() (bool, error) {
	v, err := l.page.EvalOn(LoginEmailInput, invalidEmailJS, l.timeout)
	if err != nil {
		return false, fmt.Errorf("failed to read email validity: %w", err)
	}
	invalid, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected validity result %v (%T)", v, v)
	}
	return invalid, nil
}

// ExpectError waits for an error message containing text.
func (l *LoginPage) ExpectError(text string) error {
	return l.ExpectVisible(TextSelector(text), ExpectTimeout)
}

// ExpectLoggedIn waits for the "Logged in as" marker.
func (l *LoginPage) ExpectLoggedIn() error {
	return l.ExpectVisible(TextSelector(LoggedInMarker), ExpectTimeout)
}

// ExpectNotLoggedIn asserts the "Logged in as" marker is absent.
func (l *LoginPage) ExpectNotLoggedIn() error {
	return l.ExpectHidden(TextSelector(LoggedInMarker), ExpectTimeout)
}
