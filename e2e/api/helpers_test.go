//go:build e2e

package api

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shop "github.com/thompsonoloko-droid/automation-e2e/pkg/api"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/fixtures"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

// expectEnvelope asserts the HTTP 200 transport status, the envelope schema,
// the responseCode and, when message is not empty, a case-insensitive
// substring of the message.
func expectEnvelope(t *testing.T, resp *shop.Response, code int, message string) {
	t.Helper()
	require.NoError(t, shop.VerifyStatusCode(resp, 200))
	require.NoError(t, shop.ValidateSchema(resp, shop.SchemaEnvelope))

	env, err := resp.Envelope()
	require.NoError(t, err)
	assert.Equal(t, code, env.ResponseCode)
	if message != "" {
		assert.Contains(t, strings.ToLower(env.Message), strings.ToLower(message))
	}
}

// createUser registers a throwaway account from the fixture template and
// deletes it when t ends. It returns the email and password.
func createUser(t *testing.T, client *shop.Client) (string, string) {
	t.Helper()
	tmpl := suite.Fixtures(t).API
	email := fixtures.UniqueEmail()
	password := tmpl.TemplatePassword()

	env, err := client.CreateAccount(context.Background(), tmpl.UserForm(email, password))
	require.NoError(t, err)
	require.Equal(t, 201, env.ResponseCode, "create %s: %s", email, env.Message)

	t.Cleanup(func() { deleteUser(t, client, email, password) })
	return email, password
}

// deleteUser removes an account, logging instead of failing.
func deleteUser(t *testing.T, client *shop.Client, email, password string) {
	t.Helper()
	env, err := client.DeleteAccount(context.Background(), email, password)
	switch {
	case err != nil:
		t.Logf("cleanup of %s: %v", email, err)
	case env.ResponseCode != 200 && env.ResponseCode != 404:
		t.Logf("cleanup of %s: %d %s", email, env.ResponseCode, env.Message)
	}
}
