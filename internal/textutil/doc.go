// Package textutil provides filename and token sanitization helpers used
// when deriving temp paths and storage keys from caller-supplied titles.
package textutil
