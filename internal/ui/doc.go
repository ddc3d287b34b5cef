// Package ui provides the Bubble Tea terminal interface: listings,
// favorites, the inbox and a conversation thread.
//
// The views never block on the network. Loads, favorite commits and sends
// run as commands, and a periodic tick copies the latest collection
// snapshots into the model. The inbox poller runs only while the inbox is
// visible and a thread poller only while its thread is open.
package ui
