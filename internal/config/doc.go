// Package config loads the vinted client configuration.
//
// # Overview
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (see Default)
//  2. A TOML file, ~/.config/vinted/config.toml unless a path is given
//  3. VINTED_* environment variables, optionally read from a .env file in
//     the working directory
//
// A missing config file is not an error; the client works against a local
// API out of the box.
//
// # TOML Format
//
//	api_url = "http://localhost:5000/api"
//	conversation_poll = "30s"
//	message_poll = "10s"
//	request_timeout = "10s"
//	mutation_timeout = "15s"
//	log_level = "info"
//	log_file = "~/.local/state/vinted/vinted.log"
//	session_file = "~/.config/vinted/session.toml"
//
// Every key is optional. Durations use Go syntax. Tilde expansion is applied
// to log_file and session_file.
//
// # Errors
//
// Load fails on unreadable files, TOML syntax errors, unparsable durations,
// non-positive intervals and unknown log levels.
package config
