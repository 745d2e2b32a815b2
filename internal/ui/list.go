package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
)

var (
	_ list.Item = sourceItem{}
	_ list.Item = genreItem{}
	_ list.Item = trackItem{}
)

// sourceItem is one entry of the source menu.
type sourceItem struct {
	label      string
	desc       string
	kind       models.RequestKind
	artistOnly bool
}

func (i sourceItem) FilterValue() string { return i.label }
func (i sourceItem) Title() string       { return i.label }
func (i sourceItem) Description() string { return i.desc }

// sources is the menu shown on start.
var sources = []sourceItem{
	{label: "My audio", desc: "Tracks saved to your page", kind: models.KindUser},
	{label: "Suggested", desc: "Recommendations for your account", kind: models.KindSuggested},
	{label: "Popular", desc: "Top tracks by genre", kind: models.KindPopular},
	{label: "Search", desc: "Search all tracks", kind: models.KindSearch},
	{label: "Artist", desc: "Search by performer only", kind: models.KindSearch, artistOnly: true},
}

// genreItem wraps [services.Genre] to implement [list.Item].
type genreItem struct {
	genre services.Genre
}

func (i genreItem) FilterValue() string { return i.genre.Name }
func (i genreItem) Title() string       { return i.genre.Name }
func (i genreItem) Description() string { return fmt.Sprintf("genre id %d", i.genre.ID) }

// trackItem wraps [models.PlaylistItem] to implement [list.Item].
type trackItem struct {
	position int
	item     models.PlaylistItem
}

func (i trackItem) FilterValue() string { return i.item.Artist + " " + i.item.Title }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.item.Title) }
func (i trackItem) Description() string {
	return fmt.Sprintf("%s • %s", i.item.Artist, shared.FormatDuration(i.item.Seconds()))
}

func sourceItems() []list.Item {
	items := make([]list.Item, len(sources))
	for i, s := range sources {
		items[i] = s
	}
	return items
}

func genreItems(genres []services.Genre) []list.Item {
	items := make([]list.Item, len(genres))
	for i, g := range genres {
		items[i] = genreItem{genre: g}
	}
	return items
}

func trackItems(playlist models.Playlist) []list.Item {
	items := make([]list.Item, len(playlist))
	for i, item := range playlist {
		items[i] = trackItem{position: i + 1, item: item}
	}
	return items
}
