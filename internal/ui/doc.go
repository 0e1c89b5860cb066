// Package ui implements an interactive terminal session using bubbletea's Elm architecture.
//
// The TUI hosts one catalog session with these views:
//  1. [SearchView] : Query the catalog, cycle the item kind, toggle favorites
//  2. [FavoritesView] : Browse and remove favorites
//  3. [PlaylistsView] : Create, delete and export local playlists
//  4. [PlaylistItemsView] : Browse and remove the items of one playlist
//  5. [PickerView] : Choose the playlist an item is added to
//  6. [NameView] : Name a new playlist
//  7. [ConfirmView] : Confirm a playlist deletion
//
// Remote calls (search, favorite and playlist additions, exports) run as [tea.Cmd]s and report back through the Msg
// union type. Every outcome is shown on the status line via [tasks.StatusFor]; no error ends the session.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
