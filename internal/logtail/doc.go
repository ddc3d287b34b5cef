// Package logtail reads and follows the client's own log file.
//
// # Overview
//
// The TUI writes slog text records to a file because it owns the terminal.
// `vinted logs` uses this package to show them:
//
//   - Read returns the last N lines using a ring buffer, one pass and
//     O(N) memory regardless of file size
//   - Follow prints a backlog and then streams appended lines, polling the
//     file size; truncation restarts from the top
//   - Level and AtLeast filter records by their level=XXX field
//   - ColorizeLine renders a record with a lipgloss colour per level
//
// A missing log file is not an error: it means nothing has been logged yet.
package logtail
