package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flow/internal/tasks"
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
	MsgPlaylistFetched MsgKind = iota
	MsgProgressUpdate
)

// fetchedData carries the outcome of fetch number seq. Stale fetches are dropped by the model.
type fetchedData struct {
	seq    int
	result *tasks.FetchResult
	err    error
}

type progressData struct {
	seq    int
	update tasks.ProgressUpdate
}

// playlistFetchedMsg is the constructor for [MsgPlaylistFetched]
func playlistFetchedMsg(seq int, result *tasks.FetchResult, err error) Msg {
	return Msg{kind: MsgPlaylistFetched, data: fetchedData{seq, result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(seq int, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressData{seq, update}}
}
