//go:build e2e

// Package api holds the contract tests for the shop's JSON API.
//
// The API answers HTTP 200 for everything and carries the real outcome in
// the body's responseCode, so the tests assert on the envelope. Requests
// go through the suite's throttled client so parallel packages stay under
// the public site's rate limits.
//
//	go test -tags=e2e ./e2e/api/...
//	E2E_API_URL=http://localhost:8080/api go test -tags=e2e ./e2e/api/...
package api
