// Package services holds the application services of the FilmRate client:
// authentication, the catalog cache, the review aggregator, the watchlist
// reconciler and admin user management.
//
// Every service checks the session once per action through
// SessionStore.Authorize and refuses to call the store when the check is
// denied. Store failures are returned unchanged so the store's own message
// reaches the user; the only local recovery is the watchlist resync.
package services
