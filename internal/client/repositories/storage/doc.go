// Package storage is the durable local key/value store of the CLI. Each
// value lives under a namespace key and survives restarts; the session
// keeps the signed-in identity here.
package storage
