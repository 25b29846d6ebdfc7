// Package journal keeps a local SQLite history of batch runs and their
// per-item outcomes. It is written best-effort after each batch and queried
// by the history API and CLI.
package journal
