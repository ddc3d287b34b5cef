// Package app provides the orchestration layer for the vinted client.
//
// # Overview
//
// This package wires together configuration, logging, the saved session,
// the API client, the optimistic controller and the UI. It serves as the
// composition root where all dependencies are initialized and connected.
//
// # Architecture
//
// Open performs the shared setup used by every command:
//
//  1. Load ~/.config/vinted/config.toml and VINTED_* overrides
//  2. Open the log file (the TUI owns the terminal, so logs never go to stderr)
//  3. Restore the session from the session file
//  4. Build a market.Client that reads its bearer token from the session
//
// Run then checks that the API answers, builds the catalog and inbox, and
// starts the TUI, blocking until the user exits or the context is cancelled.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Open()                config, log, session, client
//	       ├─────> ensureAPIAvailable()  pre-flight check (3s)
//	       ├─────> optimistic.New()      favorite toggles
//	       ├─────> catalog.New()         listings + favorites
//	       ├─────> chat.NewInbox()       conversation list
//	       └─────> ui.Run()              TUI (blocks)
//
// The UI starts and stops pollers as screens appear and disappear; this
// package starts none of its own.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration
//   - No saved session, or a token the API rejects
//   - API unreachable during the pre-flight check
//
// Everything after startup is recoverable: failed fetches are logged and
// surfaced in the status bar while polling continues.
//
// # Accounts
//
// Login, Register, Logout, WhoAmI and ForgotPassword back the CLI
// subcommands of the same names. They share Open with Run, so flags and
// environment overrides apply to them too.
package app
