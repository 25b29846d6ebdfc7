// Package s3store uploads finished downloads to object storage and returns
// their durable public address.
package s3store
