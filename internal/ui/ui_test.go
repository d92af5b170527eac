package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	outcome *models.Outcome
	err     error
	updates []tasks.ProgressUpdate
	got     tasks.Request
}

func (p *stubPipeline) Run(_ context.Context, progress chan<- tasks.ProgressUpdate, req tasks.Request) (*models.Outcome, error) {
	p.got = req
	for _, u := range p.updates {
		progress <- u
	}
	return p.outcome, p.err
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds pipeline messages back into the model until the run completes.
func drive(t *testing.T, m *Model) {
	t.Helper()
	for range 20 {
		if m.view != RunView {
			return
		}
		msg := waitForProgress(m.current)()
		require.NotNil(t, msg)
		m.Update(msg)
	}
	t.Fatal("run did not complete")
}

func radioheadOutcome() *models.Outcome {
	return &models.Outcome{
		Kind:           models.OutcomeSuccess,
		Service:        models.Spotify,
		URL:            "https://open.spotify.com/playlist/pl1",
		PlaylistID:     "pl1",
		AddedCount:     2,
		RequestedCount: 3,
		Setlist: &models.Setlist{
			ArtistName: "Radiohead",
			EventDate:  "14-08-2025",
			VenueName:  "Forum",
			City:       "Copenhagen",
			Songs:      []string{"Airbag", "Lucky", "Nude"},
		},
		Matches: []models.TrackMatch{
			{Title: "Airbag", Found: true, PlatformID: "a"},
			{Title: "Lucky", Found: true, PlatformID: "b"},
			{Title: "Nude"},
		},
	}
}

func TestModel(t *testing.T) {
	creds := func(kind models.ServiceKind) models.Credential {
		if kind == models.Spotify {
			return models.NewCredential("tok")
		}
		return models.Credential{}
	}

	t.Run("starts on the configured service", func(t *testing.T) {
		m := NewModel(context.Background(), Options{Service: models.Deezer})
		assert.Equal(t, models.Deezer, m.Service())
		assert.Equal(t, InputView, m.view)
	})

	t.Run("tab cycles services in both directions", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		assert.Equal(t, models.Spotify, m.Service())

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, models.YouTube, m.Service())

		m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		assert.Equal(t, models.Deezer, m.Service())
	})

	t.Run("blank artist does not start a run", func(t *testing.T) {
		p := &stubPipeline{}
		m := NewModel(context.Background(), Options{Pipeline: p, Artist: "   "})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, InputView, m.view)
		assert.Contains(t, m.View(), "Enter an artist name")
	})

	t.Run("not connected services are marked", func(t *testing.T) {
		m := NewModel(context.Background(), Options{Credentials: creds})
		view := m.View()
		assert.Contains(t, view, "YouTube Music (not connected)")
		assert.NotContains(t, view, "Spotify (not connected)")
	})

	t.Run("run flows to the result view", func(t *testing.T) {
		p := &stubPipeline{
			outcome: radioheadOutcome(),
			updates: []tasks.ProgressUpdate{
				{Phase: tasks.FetchSetlist, Message: "Fetching latest setlist for Radiohead..."},
				{Phase: tasks.ResolveTracks, Step: 1, Total: 3, Message: "✓ Airbag"},
			},
		}
		m := NewModel(context.Background(), Options{Pipeline: p, Credentials: creds, Artist: "Radiohead"})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		assert.Equal(t, RunView, m.view)

		msg := waitForProgress(m.current)()
		m.Update(msg)
		assert.Equal(t, tasks.FetchSetlist, m.progress.Phase)
		assert.Contains(t, m.View(), "Fetching latest setlist")

		drive(t, m)
		assert.Equal(t, ResultView, m.view)
		assert.Equal(t, "Radiohead", p.got.Artist)
		assert.Equal(t, models.Spotify, p.got.Service)
		assert.Equal(t, "tok", p.got.Credential.AccessToken())
		assert.Equal(t, []string{"Fetching latest setlist for Radiohead...", "✓ Airbag"}, m.recent)

		view := m.View()
		assert.Contains(t, view, "Created playlist with 2 of 3 songs from 14-08-2025.")
		assert.Contains(t, view, "Open Playlist on Spotify: ")
		assert.Contains(t, view, "https://open.spotify.com/playlist/pl1")
		assert.Contains(t, view, "Radiohead Setlist - 14-08-2025")
		assert.Len(t, m.matchList.Items(), 3)
	})

	t.Run("open key launches the playlist url", func(t *testing.T) {
		var opened string
		p := &stubPipeline{outcome: radioheadOutcome()}
		m := NewModel(context.Background(), Options{
			Pipeline:    p,
			Credentials: creds,
			Artist:      "Radiohead",
			OpenURL:     func(u string) error { opened = u; return nil },
		})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m)

		_, cmd := m.Update(keyRunes("o"))
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.Equal(t, "https://open.spotify.com/playlist/pl1", opened)
		assert.Empty(t, m.notice)
	})

	t.Run("browser failure is shown as a notice", func(t *testing.T) {
		p := &stubPipeline{outcome: radioheadOutcome()}
		m := NewModel(context.Background(), Options{
			Pipeline: p,
			Artist:   "Radiohead",
			OpenURL:  func(string) error { return errors.New("no display") },
		})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m)

		_, cmd := m.Update(keyRunes("o"))
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.Contains(t, m.View(), "Could not open browser: no display")
	})

	t.Run("warning outcome has no playlist link", func(t *testing.T) {
		p := &stubPipeline{outcome: &models.Outcome{Kind: models.OutcomeNoSetlist, Service: models.Deezer}}
		m := NewModel(context.Background(), Options{Pipeline: p, Artist: "Nobody"})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m)

		view := m.View()
		assert.Contains(t, view, "No recent setlist found for this artist.")
		assert.NotContains(t, view, "Open Playlist")

		_, cmd := m.Update(keyRunes("o"))
		assert.Nil(t, cmd)
	})

	t.Run("pipeline error is rendered", func(t *testing.T) {
		p := &stubPipeline{err: context.Canceled}
		m := NewModel(context.Background(), Options{Pipeline: p, Artist: "Radiohead"})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m)

		assert.Contains(t, m.View(), "Run failed: context canceled")
	})

	t.Run("restart returns to the input with the artist kept", func(t *testing.T) {
		p := &stubPipeline{outcome: radioheadOutcome()}
		m := NewModel(context.Background(), Options{Pipeline: p, Artist: "Radiohead"})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drive(t, m)

		m.Update(keyRunes("r"))
		assert.Equal(t, InputView, m.view)
		assert.Nil(t, m.outcome)
		assert.Empty(t, m.recent)
		assert.Equal(t, "Radiohead", m.input.Value())
	})

	t.Run("quit keys", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())

		m.view = ResultView
		_, cmd = m.Update(keyRunes("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestMatchItem(t *testing.T) {
	items := matchItems([]models.TrackMatch{
		{Title: "Airbag", Found: true, PlatformID: "sp1"},
		{Title: "Lucky"},
		{Title: "Nude", Err: errors.New("boom")},
	})
	require.Len(t, items, 3)

	first := items[0].(matchItem)
	assert.Equal(t, "1. Airbag", first.Title())
	assert.Equal(t, "✓ sp1", first.Description())
	assert.Equal(t, "Airbag", first.FilterValue())

	assert.Equal(t, "✗ not found", items[1].(matchItem).Description())
	assert.Equal(t, "✗ search failed: boom", items[2].(matchItem).Description())
}

func TestPaletteSeverity(t *testing.T) {
	assert.Equal(t, styles.ok.Render("x"), styles.Severity(models.SeveritySuccess).Render("x"))
	assert.Equal(t, styles.warn.Render("x"), styles.Severity(models.SeverityWarning).Render("x"))
	assert.Equal(t, styles.info.Render("x"), styles.Severity(models.SeverityInfo).Render("x"))
	assert.Equal(t, styles.err.Render("x"), styles.Severity(models.SeverityDanger).Render("x"))
}

func TestInitFocusesInput(t *testing.T) {
	m := NewModel(context.Background(), Options{})
	assert.NotNil(t, m.Init())
	assert.True(t, m.input.Focused())
	assert.True(t, strings.Contains(m.View(), "Artist:"))
}
