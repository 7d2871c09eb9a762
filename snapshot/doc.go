// Package snapshot houses concrete implementations of the snapshot Store:
// durable records of finished analyses that clients can retrieve after the
// event stream has closed.
//
// Add additional backends (Redis, Postgres, object storage, etc.) in
// sub-packages without changing any calling code; only the wiring layer needs
// to decide which implementation to instantiate.
package snapshot
