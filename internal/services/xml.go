package services

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// APIError is the error envelope the API returns instead of a playlist.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: error %d: %s", shared.ErrAPIRequest, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// AuthorizationFailed reports whether the API rejected the access token (error code 5).
func (e *APIError) AuthorizationFailed() bool {
	return e.Code == 5
}

// xmlNode is a generic element tree; the audio responses have no fixed schema worth binding to.
type xmlNode struct {
	XMLName xml.Name
	Inner   string    `xml:",innerxml"`
	Nodes   []xmlNode `xml:",any"`
}

// lookup returns the first descendant named name, depth first in document order.
func (n *xmlNode) lookup(name string) *xmlNode {
	for i := range n.Nodes {
		child := &n.Nodes[i]
		if child.XMLName.Local == name {
			return child
		}
		if found := child.lookup(name); found != nil {
			return found
		}
	}
	return nil
}

// text concatenates every text node below n in document order. Whitespace-only text nodes are
// skipped; other text is kept exactly as sent.
func (n *xmlNode) text() string {
	var b strings.Builder
	dec := xml.NewDecoder(strings.NewReader(n.Inner))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok && strings.TrimSpace(string(cd)) != "" {
			b.Write(cd)
		}
	}
	return b.String()
}

// find returns the text of the first descendant named name. A first match with no text wins over
// later matches.
func (n *xmlNode) find(name string) string {
	if node := n.lookup(name); node != nil {
		return node.text()
	}
	return ""
}

// entries returns the record elements under root, looking through an <items> wrapper when present.
func (n *xmlNode) entries() []xmlNode {
	var out []xmlNode
	for _, child := range n.Nodes {
		if child.XMLName.Local == "items" {
			out = append(out, child.Nodes...)
			continue
		}
		out = append(out, child)
	}
	return out
}

func decodeRoot(r io.Reader) (*xmlNode, bool) {
	var root xmlNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, false
	}
	return &root, true
}

func playlistFrom(root *xmlNode) (models.Playlist, int) {
	playlist := models.Playlist{}
	dropped := 0
	for _, entry := range root.entries() {
		item := models.PlaylistItem{
			Artist:   entry.find("artist"),
			Title:    entry.find("title"),
			Duration: entry.find("duration"),
			URL:      entry.find("url"),
		}
		if !item.Complete() {
			dropped++
			continue
		}
		playlist = append(playlist, item)
	}
	return playlist, dropped
}

// ParsePlaylist converts an audio list document into a [models.Playlist] in document order.
//
// Entries missing any of artist, title, duration or url are dropped and counted. Empty or
// malformed documents yield an empty playlist; parsing never fails.
func ParsePlaylist(r io.Reader) (models.Playlist, int) {
	root, ok := decodeRoot(r)
	if !ok {
		return models.Playlist{}, 0
	}
	return playlistFrom(root)
}

// ParseResponse is [ParsePlaylist] for API responses: an <error> document becomes an [*APIError].
func ParseResponse(r io.Reader) (models.Playlist, int, error) {
	root, ok := decodeRoot(r)
	if !ok {
		return models.Playlist{}, 0, nil
	}

	if root.XMLName.Local == "error" {
		code, _ := strconv.Atoi(strings.TrimSpace(root.find("error_code")))
		return nil, 0, &APIError{Code: code, Message: root.find("error_msg")}
	}

	playlist, dropped := playlistFrom(root)
	return playlist, dropped, nil
}
