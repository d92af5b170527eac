package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	RunView
	ResultView
)

const recentLines = 5

// CredentialFunc looks up the stored credential for a service. A zero or expired credential means the user is not connected.
type CredentialFunc func(models.ServiceKind) models.Credential

// Options configures a [Model].
type Options struct {
	Pipeline    tasks.Pipeline
	Credentials CredentialFunc
	OpenURL     func(string) error
	Service     models.ServiceKind
	Artist      string
}

// run is one in-flight pipeline invocation. outcome and err are written before updates is closed.
type run struct {
	updates chan tasks.ProgressUpdate
	outcome *models.Outcome
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	pipeline    tasks.Pipeline
	credentials CredentialFunc
	openURL     func(string) error
	services    []models.ServiceKind
	selected    int
	input       textinput.Model
	spinner     spinner.Model
	bar         progress.Model
	current     *run
	progress    tasks.ProgressUpdate
	recent      []string
	outcome     *models.Outcome
	matchList   list.Model
	notice      string
	err         error
	width       int
	height      int
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "Artist name"
	ti.CharLimit = 120
	ti.Width = 40
	ti.SetValue(opts.Artist)

	m := &Model{
		ctx:         ctx,
		view:        InputView,
		pipeline:    opts.Pipeline,
		credentials: opts.Credentials,
		openURL:     opts.OpenURL,
		services:    models.ServiceKinds,
		input:       ti,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	for i, kind := range m.services {
		if kind == opts.Service {
			m.selected = i
		}
	}
	if m.credentials == nil {
		m.credentials = func(models.ServiceKind) models.Credential { return models.Credential{} }
	}
	return m
}

// Service returns the currently selected service.
func (m *Model) Service() models.ServiceKind {
	return m.services[m.selected]
}

// Init focuses the artist input.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.matchList.SetSize(m.listWidth(), m.listHeight())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case RunView:
			if key.Matches(msg, m.keys.abort) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == InputView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if update.Message != "" {
			m.recent = append(m.recent, update.Message)
			if len(m.recent) > recentLines {
				m.recent = m.recent[len(m.recent)-recentLines:]
			}
		}
		return m, waitForProgress(m.current)

	case MsgRunComplete:
		done := msg.data.(runComplete)
		m.current = nil
		m.outcome = done.outcome
		m.err = done.err
		m.view = ResultView

		var matches []models.TrackMatch
		if done.outcome != nil {
			matches = done.outcome.Matches
		}
		m.matchList = list.New(matchItems(matches), list.NewDefaultDelegate(), 0, 0)
		m.matchList.Title = "Songs"
		m.matchList.SetShowHelp(false)
		m.matchList.SetSize(m.listWidth(), m.listHeight())
		return m, nil

	case MsgBrowserOpened:
		if err, ok := msg.data.(error); ok && err != nil {
			m.notice = fmt.Sprintf("Could not open browser: %v", err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.selected = (m.selected + 1) % len(m.services)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.selected = (m.selected + len(m.services) - 1) % len(m.services)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.startRun()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.open):
		if m.outcome == nil || m.outcome.URL == "" || m.openURL == nil {
			return m, nil
		}
		url, open := m.outcome.URL, m.openURL
		return m, func() tea.Msg { return browserOpenedMsg(open(url)) }
	}

	var cmd tea.Cmd
	m.matchList, cmd = m.matchList.Update(msg)
	return m, cmd
}

func (m *Model) reset() {
	m.view = InputView
	m.outcome = nil
	m.err = nil
	m.notice = ""
	m.recent = nil
	m.progress = tasks.ProgressUpdate{}
}

// startRun launches the pipeline for the typed artist and selected service.
func (m *Model) startRun() tea.Cmd {
	artist := strings.TrimSpace(m.input.Value())
	if artist == "" {
		m.notice = "Enter an artist name first."
		return nil
	}
	if m.pipeline == nil {
		m.notice = "No pipeline configured."
		return nil
	}

	kind := m.Service()
	req := tasks.Request{Artist: artist, Service: kind, Credential: m.credentials(kind)}
	r := &run{updates: make(chan tasks.ProgressUpdate, 64)}
	m.current = r
	m.notice = ""
	m.recent = nil
	m.progress = tasks.ProgressUpdate{}
	m.view = RunView
	m.input.Blur()

	pipeline, ctx := m.pipeline, m.ctx
	go func() {
		r.outcome, r.err = pipeline.Run(ctx, r.updates, req)
		close(r.updates)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(r))
}

// waitForProgress blocks on the next update and reports completion once the run closes its channel.
func waitForProgress(r *run) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return nil
		}
		update, ok := <-r.updates
		if !ok {
			return runCompleteMsg(r.outcome, r.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) listWidth() int {
	if w := m.width - 4; w > 20 {
		return w
	}
	return 60
}

func (m *Model) listHeight() int {
	if h := m.height - 12; h > 4 {
		return h
	}
	return 10
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderInput() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Setlist → Playlist"))
	b.WriteString("\n")
	b.WriteString("Artist:  " + m.input.View() + "\n\n")

	names := make([]string, len(m.services))
	for i, kind := range m.services {
		name := kind.DisplayName()
		if !m.credentials(kind).Usable() {
			name += " (not connected)"
		}
		if i == m.selected {
			names[i] = styles.selected.Render(name)
		} else {
			names[i] = styles.help.Render(name)
		}
	}
	b.WriteString("Service: " + strings.Join(names, "  ") + "\n")

	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.next, m.keys.abort}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderRun() string {
	var phase string
	switch m.progress.Phase {
	case tasks.FetchSetlist:
		phase = "Fetching latest setlist..."
	case tasks.ResolveTracks:
		phase = fmt.Sprintf("Searching %s (%d/%d)", m.Service().DisplayName(), m.progress.Step, m.progress.Total)
	case tasks.Identify:
		phase = "Checking account..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.AddTracks:
		phase = "Adding songs..."
	case tasks.Rollback:
		phase = "Removing empty playlist..."
	default:
		phase = "Finishing..."
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Building Playlist"))
	b.WriteString("\n")
	b.WriteString(m.spinner.View() + " " + phase + "\n")
	if m.progress.Total > 0 {
		b.WriteString(m.bar.ViewAs(float64(m.progress.Step)/float64(m.progress.Total)) + "\n")
	}
	if len(m.recent) > 0 {
		b.WriteString("\n" + styles.help.Render(strings.Join(m.recent, "\n")) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.abort}))
	return b.String()
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}

	if m.err != nil {
		msg := styles.err.Render(fmt.Sprintf("Run failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView(helpKeys))
	}
	if m.outcome == nil {
		msg := styles.err.Render("No result available")
		return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView(helpKeys))
	}

	var b strings.Builder
	if sl := m.outcome.Setlist; sl != nil {
		b.WriteString(styles.title.Render(formatter.Title(sl)))
		b.WriteString("\n")
		if loc := formatter.Location(sl); loc != "" {
			b.WriteString(styles.help.Render(loc) + "\n\n")
		}
	}

	b.WriteString(styles.Severity(m.outcome.Severity()).Render(m.outcome.Summary()))
	b.WriteString("\n")
	if m.outcome.URL != "" {
		b.WriteString(fmt.Sprintf("\nOpen Playlist on %s: %s\n", m.outcome.Service.DisplayName(), styles.info.Render(m.outcome.URL)))
		helpKeys = append([]key.Binding{m.keys.open}, helpKeys...)
	}
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}
	if len(m.outcome.Matches) > 0 {
		b.WriteString("\n" + m.matchList.View() + "\n")
		helpKeys = append([]key.Binding{m.keys.up, m.keys.down}, helpKeys...)
	}

	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
