//go:build e2e

// Package ui holds the browser tests for the shop.
//
// These tests are isolated from the standard test suite via build tags.
// They drive a real browser (Rod downloads Chromium if none is present;
// the Firefox and WebKit projects need `playwright install`) and are
// intended for CI pipelines or explicit local testing.
//
// Running the tests:
//
//	go test -tags=e2e ./e2e/ui/...
//	E2E_PROJECT=firefox E2E_TAGS=smoke go test -tags=e2e ./e2e/ui/...
//	go run ./cmd/e2e run --ui --stub   # against a local shop stub
//
// Flows that log in read TEST_USER_* and CARD_* from the environment or
// .env and are skipped, naming the missing variables, when those are unset.
//
// Test isolation:
// The package shares one browser; every test opens its own page in a
// fresh context, so tests run in parallel.
package ui
