// Package cli provides the interactive FilmRate command-line client.
//
// It wires configuration, local session storage, the REST store client, the
// catalog, review and watchlist services and the filtered view into a REPL.
// Typical flow: restore the persisted identity, load the catalog, then read
// commands until the user exits.
//
// Browsing films, their reviews and averages works anonymously. Rating,
// personal lists and the admin commands require signing in; commands the
// current identity may not use are refused before any store call is made.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
