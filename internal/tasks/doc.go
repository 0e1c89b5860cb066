// Package tasks implements the operations of one browsing session.
//
// # Engine
//
// [Engine] joins a [services.Catalog] with the session's favorites and playlist stores:
//
//  1. [Engine.Search] : validates the query, queries the catalog and records the search in the history
//  2. [Engine.AddFavorite], [Engine.ToggleFavorite], [Engine.RemoveFavorite] : favorites bookkeeping
//  3. [Engine.CreatePlaylist], [Engine.AddToPlaylist], [Engine.DeletePlaylist] : local playlists
//  4. [Engine.ExportPlaylists] : writes playlists to disk with a bounded worker pool
//
// Items are re-fetched with [services.Catalog.FetchDetail] before they are stored, so favorites and
// playlists hold the catalog's current data.
//
// # Status Reporting
//
// [StatusFor] turns any operation outcome into a [Status] with a severity level. Duplicates are
// informational, bad input is a warning, everything else is shown as a danger message. None are fatal.
//
// # Progress Reporting
//
// Exports send [ProgressUpdate] values over a channel. Updates use select with default to prevent blocking.
//
// # Search History
//
// The optional [HistoryRecorder] (repositories.SearchHistoryRepository) persists every successful search.
// Recording failures are logged and ignored.
package tasks
