// Package models defines the domain entities shared by the catalog client, the session stores and the persistence layer.
//
// The package contains two categories of types:
//
// 1. Catalog values: immutable records rebuilt from every remote response
//   - [CatalogItem] : normalized track, artist or album from any provider
//   - [Key] : composite membership key (source, kind, id)
//
// 2. Session entities: owned by the in-memory stores for the lifetime of a session
//   - [FavoriteEntry] : a liked catalog item
//   - [Playlist] : a named, ordered sequence of catalog items
//
// [SearchRecord] is the only persisted entity. It implements the [Model] interface,
// and the [Repository] interface defines standard CRUD operations for database access.
package models
