// Package deps locates the external retrieval tool and reports on binary
// availability.
//
// The resolver tries, in order: an explicitly configured path, a PATH
// lookup, and finally provisioning a prebuilt binary into the tool cache
// directory. Provisioning happens at most once per process; concurrent
// first-time callers share the single in-flight download.
package deps
