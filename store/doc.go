// Package store persists the authenticated-session flag: the logged-in marker
// and the verified contact number, written as one atomic pair. Persisting a
// fresh session also clears the stale membership cache key so a new login never
// inherits a previous user's cached state.
//
// Two implementations are provided: Redis for the shared durable key/value
// store and Memory for tests and local development.
package store
