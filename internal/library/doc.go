// Package library holds the session's local collections: a [Favorites] set and a [Playlists] store.
//
// Both are in-memory, keyed by [models.Key] and safe for concurrent use. Nothing is persisted between runs.
package library
