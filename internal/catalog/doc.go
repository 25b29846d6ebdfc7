// Package catalog persists one metadata record per ingested item into the
// document store. Records are written with overwrite semantics keyed by a
// generated ID; the ID embeds a timestamp and a random suffix so collisions
// are not a practical concern.
package catalog
