// Package cli provides the interactive command-line client.
//
// It wires configuration, the session store, the API client and an
// interactive REPL. On start the stored session is checked against the
// server; afterwards every command goes through the authenticated pipeline,
// so an expired access token is refreshed transparently and a rejected
// refresh signs the user out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
