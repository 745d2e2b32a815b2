package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/flow/internal/shared"
)

const audioXML = `<?xml version="1.0" encoding="utf-8"?>
<response list="true">
 <audio>
  <aid>1</aid>
  <owner_id>42</owner_id>
  <artist>Daft Punk</artist>
  <title>One More Time</title>
  <duration>320</duration>
  <url>https://cs1.vk.me/u1/one.mp3</url>
 </audio>
 <audio>
  <aid>2</aid>
  <artist>Air</artist>
  <title>La Femme d'Argent</title>
  <duration>431</duration>
 </audio>
 <audio>
  <aid>3</aid>
  <artist>Justice</artist>
  <title>D.A.N.C.E.</title>
  <duration>242</duration>
  <url>https://cs1.vk.me/u1/dance.mp3</url>
 </audio>
</response>`

func TestParsePlaylist(t *testing.T) {
	t.Run("Drops Incomplete Entries", func(t *testing.T) {
		playlist, dropped := ParsePlaylist(strings.NewReader(audioXML))

		if len(playlist) != 2 {
			t.Fatalf("expected 2 items, got %d", len(playlist))
		}
		if dropped != 1 {
			t.Errorf("expected 1 dropped entry, got %d", dropped)
		}
	})

	t.Run("Keeps Document Order", func(t *testing.T) {
		playlist, _ := ParsePlaylist(strings.NewReader(audioXML))

		first := playlist[0]
		if first.Artist != "Daft Punk" || first.Title != "One More Time" || first.Duration != "320" || first.URL != "https://cs1.vk.me/u1/one.mp3" {
			t.Errorf("unexpected first item %+v", first)
		}
		if playlist[1].Artist != "Justice" {
			t.Errorf("expected Justice second, got %s", playlist[1].Artist)
		}
	})

	t.Run("One Complete One Missing URL", func(t *testing.T) {
		doc := `<response><audio><artist>A</artist><title>T</title><duration>1</duration><url>u</url></audio>` +
			`<audio><artist>B</artist><title>T</title><duration>2</duration></audio></response>`

		playlist, _ := ParsePlaylist(strings.NewReader(doc))
		if len(playlist) != 1 {
			t.Errorf("expected exactly one item, got %d", len(playlist))
		}
	})

	t.Run("Items Wrapper", func(t *testing.T) {
		doc := `<response><count>2</count><items list="true">` +
			`<audio><artist>A</artist><title>1</title><duration>10</duration><url>u1</url></audio>` +
			`<audio><artist>B</artist><title>2</title><duration>20</duration><url>u2</url></audio>` +
			`</items></response>`

		playlist, dropped := ParsePlaylist(strings.NewReader(doc))
		if len(playlist) != 2 {
			t.Fatalf("expected 2 items, got %d", len(playlist))
		}
		if dropped != 1 {
			t.Errorf("expected the count element to be dropped, got %d", dropped)
		}
		if playlist[1].URL != "u2" {
			t.Errorf("unexpected second item %+v", playlist[1])
		}
	})

	t.Run("Empty And Malformed Documents", func(t *testing.T) {
		for name, doc := range map[string]string{
			"empty":      "",
			"empty root": "<response/>",
			"malformed":  "<response><audio><artist>A</artist>",
			"not xml":    "{\"response\": []}",
		} {
			playlist, _ := ParsePlaylist(strings.NewReader(doc))
			if playlist == nil || len(playlist) != 0 {
				t.Errorf("%s: expected empty playlist, got %v", name, playlist)
			}
		}
	})

	t.Run("Field Text", func(t *testing.T) {
		tests := []struct {
			name   string
			artist string
			want   string
			keep   bool
		}{
			{name: "padding kept", artist: "<artist>\n  A  \n</artist>", want: "\n  A  \n", keep: true},
			{name: "nested text joined", artist: "<artist>A<b>C</b>D</artist>", want: "ACD", keep: true},
			{name: "entities decoded", artist: "<artist>Simon &amp; Garfunkel</artist>", want: "Simon & Garfunkel", keep: true},
			{name: "whitespace only", artist: "<artist>   </artist>", keep: false},
			{name: "first match wins", artist: "<artist/><extra><artist>B</artist></extra>", keep: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				doc := "<response><audio>" + tt.artist + "<title>T</title><duration>5</duration><url>u</url></audio></response>"
				playlist, dropped := ParsePlaylist(strings.NewReader(doc))

				if !tt.keep {
					if len(playlist) != 0 || dropped != 1 {
						t.Errorf("expected entry to be dropped, got %+v", playlist)
					}
					return
				}
				if len(playlist) != 1 || playlist[0].Artist != tt.want {
					t.Errorf("expected artist %q, got %+v", tt.want, playlist)
				}
			})
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("Playlist", func(t *testing.T) {
		playlist, dropped, err := ParseResponse(strings.NewReader(audioXML))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlist) != 2 || dropped != 1 {
			t.Errorf("expected 2 items and 1 dropped, got %d and %d", len(playlist), dropped)
		}
	})

	t.Run("Error Envelope", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="utf-8"?>
<error>
 <error_code>5</error_code>
 <error_msg>User authorization failed: invalid access_token.</error_msg>
 <request_params list="true"><param><key>oauth</key><value>1</value></param></request_params>
</error>`

		_, _, err := ParseResponse(strings.NewReader(doc))

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Code != 5 || !apiErr.AuthorizationFailed() {
			t.Errorf("expected code 5, got %d", apiErr.Code)
		}
		if !strings.Contains(apiErr.Message, "invalid access_token") {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected error to wrap ErrAPIRequest")
		}
	})

	t.Run("Malformed Is Silent", func(t *testing.T) {
		playlist, _, err := ParseResponse(strings.NewReader("<<<"))
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if len(playlist) != 0 {
			t.Errorf("expected empty playlist, got %d items", len(playlist))
		}
	})
}
