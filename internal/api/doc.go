// Package api defines the JSON payloads exchanged between the mediavault
// daemon and its clients.
package api
