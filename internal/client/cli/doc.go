// Package cli provides the interactive RecipeBox command-line client.
//
// It wires configuration, the HTTP API client and a local recipe collection
// into a REPL. Browsing accumulates pages: "list" and "mine" start a fresh
// result set, "more" appends the next page of the current one.
//
// Any command that fails with an authentication error drops the local
// session and asks for credentials again.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
