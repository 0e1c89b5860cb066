package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchDone MsgKind = iota
	MsgFavoriteToggled
	MsgPlaylistItemAdded
	MsgProgressUpdate
	MsgExportComplete
)

type searchResult struct {
	seq   int
	query string
	items []models.CatalogItem
	err   error
}

type toggleResult struct {
	on    bool
	title string
	err   error
}

type addResult struct {
	playlist string
	item     models.CatalogItem
	err      error
}

type exportResult struct {
	result *tasks.ExportResult
	err    error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(seq int, query string, items []models.CatalogItem, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchResult{seq, query, items, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(on bool, title string, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: toggleResult{on, title, err}}
}

// playlistItemAddedMsg is the constructor for [MsgPlaylistItemAdded]
func playlistItemAddedMsg(playlist string, item models.CatalogItem, err error) Msg {
	return Msg{kind: MsgPlaylistItemAdded, data: addResult{playlist, item, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.ExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportResult{result, err}}
}
