// Package ingest coordinates the acquisition pipeline: for each submitted
// request it downloads the source media through the retrieval tool, uploads
// the result to object storage, and persists a metadata record, reporting
// per-item progress along the way.
//
// Batch items run strictly sequentially. A single item's failure is recorded
// in its result and never aborts the batch; only missing setup (absent
// clients or configuration) fails the whole call.
package ingest
