// Package daemon hosts the long-running mediavault process: it owns the
// ingest service, the batch journal, and the authenticated HTTP API, and
// enforces single-instance execution through a lock file.
package daemon
