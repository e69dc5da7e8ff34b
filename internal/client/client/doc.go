// Package client talks to the RecipeBox HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract the CLI depends on. HTTPClient
// implements it on top of go-retryablehttp: the session cookie set by
// login/register lives in a cookie jar and is replayed on every call, and
// transient failures (connection errors, 502/503/504) are retried up to
// Config.RetryMax times.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which unwraps to the matching sentinel
// from internal/common (ErrUnauthenticated, ErrNotFound, ...), so callers
// match with errors.Is. Transport failures wrap ErrUnavailable.
package client
