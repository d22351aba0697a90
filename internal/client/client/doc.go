// Package client talks to the remote FilmRate store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering every
//     store operation: films, users, reviews and watchlist items.
//  2. A REST implementation (see RESTClient) that attaches the caller's
//     identity as X-User-Id / X-User-Role headers, tags each call with an
//     X-Request-Id and maps HTTP failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Store failures are returned as *APIError, which carries the store's own
// message and unwraps to one of ErrValidation, ErrUnauthenticated,
// ErrUnauthorized, ErrNotFound, ErrConflict or ErrUnavailable.
//
// Requests are never retried and carry no client-side deadline; cancellation
// is left to the caller's context.
package client
