package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
	th "github.com/desertthunder/flow/internal/testing"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(mock *th.MockService, opts tasks.FetchOpts) *Model {
	engine := tasks.NewPlaylistEngine(mock, nil)
	m := NewModel(context.Background(), engine, services.Genres(), nil, opts)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// drive runs cmd and feeds every message it produces back into the model until the chain ends.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("command chain did not finish")
		}
		_, cmd = m.Update(cmd())
	}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestModelNavigation(t *testing.T) {
	t.Run("Starts On Source Menu", func(t *testing.T) {
		m := newTestModel(&th.MockService{}, tasks.FetchOpts{})
		if m.view != SourceView {
			t.Errorf("expected SourceView, got %d", m.view)
		}
		if m.Init() != nil {
			t.Error("expected no initial command")
		}
		if view := m.View(); !strings.Contains(view, "My audio") || !strings.Contains(view, "Suggested") {
			t.Errorf("expected source menu, got %s", view)
		}
	})

	t.Run("My Audio", func(t *testing.T) {
		mock := &th.MockService{}
		m := newTestModel(mock, tasks.FetchOpts{})

		cmd := press(m, enter)
		if m.view != LoadingView {
			t.Fatalf("expected LoadingView, got %d", m.view)
		}
		drive(t, m, cmd)

		if m.view != TrackView {
			t.Fatalf("expected TrackView, got %d", m.view)
		}
		if got := len(m.trackList.Items()); got != 3 {
			t.Errorf("expected 3 tracks, got %d", got)
		}
		reqs := mock.Requests()
		if len(reqs) != 1 || reqs[0].Kind != models.KindUser {
			t.Errorf("unexpected requests %+v", reqs)
		}
		if !strings.Contains(m.View(), "My audio 1") {
			t.Error("expected track titles in the view")
		}
	})

	t.Run("Popular Genre", func(t *testing.T) {
		mock := &th.MockService{}
		m := newTestModel(mock, tasks.FetchOpts{})

		m.sourceList.Select(2)
		if cmd := press(m, enter); cmd != nil || m.view != GenreView {
			t.Fatalf("expected GenreView without a command, got %d", m.view)
		}

		m.genreList.Select(7)
		drive(t, m, press(m, enter))

		reqs := mock.Requests()
		if len(reqs) != 1 || reqs[0].Genre != "Alternative" {
			t.Errorf("expected Alternative request, got %+v", reqs)
		}

		press(m, esc)
		if m.view != GenreView {
			t.Errorf("expected esc to return to GenreView, got %d", m.view)
		}
		press(m, esc)
		if m.view != SourceView {
			t.Errorf("expected SourceView, got %d", m.view)
		}
	})

	t.Run("Artist Search", func(t *testing.T) {
		mock := &th.MockService{}
		m := newTestModel(mock, tasks.FetchOpts{})

		m.sourceList.Select(4)
		press(m, enter)
		if m.view != SearchView {
			t.Fatalf("expected SearchView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Search by artist") {
			t.Error("expected artist search title")
		}

		if cmd := press(m, enter); cmd != nil || m.view != SearchView {
			t.Error("empty search should not fetch")
		}

		m.search.SetValue("AC/DC")
		drive(t, m, press(m, enter))

		reqs := mock.Requests()
		if len(reqs) != 1 || reqs[0].Query != "AC/DC" || !reqs[0].ArtistOnly {
			t.Errorf("unexpected requests %+v", reqs)
		}
	})

	t.Run("Typing q In Search", func(t *testing.T) {
		m := newTestModel(&th.MockService{}, tasks.FetchOpts{})
		m.sourceList.Select(3)
		press(m, enter)

		cmd := press(m, runes("q"))
		if cmd != nil {
			if _, quit := cmd().(tea.QuitMsg); quit {
				t.Fatal("q should be typed, not quit")
			}
		}
		if m.search.Value() != "q" {
			t.Errorf("expected search text q, got %q", m.search.Value())
		}
	})

	t.Run("Track Details", func(t *testing.T) {
		m := newTestModel(&th.MockService{}, tasks.FetchOpts{})
		drive(t, m, press(m, enter))

		m.trackList.Select(1)
		press(m, enter)
		if m.view != DetailView {
			t.Fatalf("expected DetailView, got %d", m.view)
		}

		view := m.View()
		for _, want := range []string{"Artist 2", "My audio 2", "03:15", "https://cs1.vk.me/audio/2.mp3", "Track 2 of 3"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in detail view", want)
			}
		}

		press(m, esc)
		if m.view != TrackView {
			t.Errorf("expected TrackView, got %d", m.view)
		}
	})

	t.Run("Reload", func(t *testing.T) {
		mock := &th.MockService{}
		m := newTestModel(mock, tasks.FetchOpts{})
		drive(t, m, press(m, enter))
		drive(t, m, press(m, runes("r")))

		if len(mock.Requests()) != 2 {
			t.Errorf("expected 2 requests, got %d", len(mock.Requests()))
		}
		press(m, esc)
		if m.view != SourceView {
			t.Errorf("expected reload to keep the original origin, got %d", m.view)
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := newTestModel(&th.MockService{}, tasks.FetchOpts{})
		cmd := press(m, runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestModelErrors(t *testing.T) {
	t.Run("Auth Error Hint", func(t *testing.T) {
		mock := &th.MockService{
			Errors: map[string]error{"My audio": fmt.Errorf("%w: no session", shared.ErrNotAuthenticated)},
		}
		m := newTestModel(mock, tasks.FetchOpts{})
		drive(t, m, press(m, enter))

		if !errors.Is(m.err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", m.err)
		}
		if m.view != SourceView {
			t.Errorf("expected return to SourceView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "flow auth login") {
			t.Error("expected login hint")
		}

		press(m, esc)
		if m.err != nil {
			t.Error("expected esc to clear the error")
		}
	})

	t.Run("Offline Without Cache", func(t *testing.T) {
		m := newTestModel(&th.MockService{}, tasks.FetchOpts{Offline: true})
		drive(t, m, press(m, enter))

		if !errors.Is(m.err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", m.err)
		}
	})

	t.Run("Nil Engine", func(t *testing.T) {
		m := NewModel(context.Background(), nil, nil, nil, tasks.FetchOpts{})
		drive(t, m, press(m, enter))
		if !errors.Is(m.err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", m.err)
		}
	})

	t.Run("Cancel Loading", func(t *testing.T) {
		mock := &th.MockService{Delay: time.Second}
		m := newTestModel(mock, tasks.FetchOpts{})

		cmd := press(m, enter)
		press(m, esc)
		if m.view != SourceView {
			t.Fatalf("expected SourceView after cancel, got %d", m.view)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			drive(t, m, cmd)
		}()

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("cancelled fetch did not finish")
		}
		if m.err != nil || m.view != SourceView {
			t.Errorf("stale result should be ignored, got view %d err %v", m.view, m.err)
		}
	})
}
