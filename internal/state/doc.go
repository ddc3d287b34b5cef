// Package state provides thread-safe snapshot stores shared between
// background fetchers and the UI.
//
// # Overview
//
// A Collection holds the last known server snapshot of one ordered collection
// (products, conversations, messages of a thread). Pollers and one-shot
// refreshes write to it; the UI reads copies on its own refresh cadence.
//
//	Producer (poller / refresh):        Consumer (UI):
//	┌────────────────────┐             ┌─────────────────────┐
//	│ fetch()            │             │                     │
//	│   ok  → Replace()  │────────────→│ Snapshot()          │
//	│   err → Fail()     │   (mutex)   │   render by Version │
//	└────────────────────┘             └─────────────────────┘
//
// # Update Semantics
//
// Replace swaps the items wholesale; there is no merging. The Version counter
// only advances when the content differs from what is stored, so repeated
// polls of an unchanged server snapshot are invisible to consumers:
//
//	coll.Replace([]Conversation{c1, c2}) // true,  Version 1
//	coll.Replace([]Conversation{c1, c2}) // false, Version 1
//
// Fail records the error and bumps ConsecutiveFailures but keeps the previous
// items, so views stay stale-but-consistent until the next successful fetch.
//
// Mutate is the hook for optimistic deltas: it edits the items in place and
// always advances the version. Reconciliation after a failed mutation goes
// through Replace or another Mutate that installs the refetched entity.
//
// # Defensive Copying
//
// Replace and Snapshot copy the item slice, and Snapshot wraps the stored
// error, so neither side can mutate the other's view.
//
// # Testing Considerations
//
// The zero value is usable:
//
//	var coll state.Collection[market.Product]
//	snap := coll.Snapshot() // Loaded == false, Version == 0
package state
