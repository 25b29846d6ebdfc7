// Command mediavault is the client CLI for the mediavault daemon. It submits
// ingest batches, inspects daemon status and batch history, and manages
// configuration files.
package main
