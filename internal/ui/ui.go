package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gallery/internal/form"
	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/prefs"
	"github.com/five82/gallery/internal/query"
	"github.com/five82/gallery/internal/state"
)

// Options configures the UI.
type Options struct {
	Context          context.Context
	Paginator        *query.Paginator
	Submitter        *form.Submitter
	Key              string
	PollTick         time.Duration
	ThemeName        string
	ShowDescriptions bool
	PrefsPath        string
	Logger           *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	pager     *query.Paginator
	submitter *form.Submitter
	key       string
	prefsPath string
	pollTick  time.Duration
	logger    *slog.Logger
	keys      keyMap

	theme            Theme
	showDescriptions bool
	width            int
	height           int
	ready            bool
	now              func() time.Time

	query    state.Query
	selected int
	flash    string
	spinner  spinner.Model

	showHelp bool
	modal    Modal
	uploads  int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	queryKey := opts.Key
	if queryKey == "" {
		queryKey = gallery.ImagesKey
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return Model{
		ctx:              ctx,
		pager:            opts.Paginator,
		submitter:        opts.Submitter,
		key:              queryKey,
		prefsPath:        prefsPath,
		pollTick:         pollTick,
		logger:           logger,
		keys:             DefaultKeyMap(),
		theme:            GetTheme(opts.ThemeName),
		showDescriptions: opts.ShowDescriptions,
		now:              time.Now,
		query:            state.Query{Key: queryKey},
		spinner:          spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.snapshotCmd(),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.snapshotCmd(), tickCmd(m.pollTick))

	case snapshotMsg:
		return m.handleSnapshot(state.Query(msg))

	case fetchDoneMsg:
		if msg.err != nil {
			m.logger.Debug("fetch finished with error", "key", m.key, "error", msg.err)
		}
		return m, m.snapshotCmd()

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Descriptions):
		m.showDescriptions = !m.showDescriptions
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.query.Items())-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(len(m.query.Items())-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.View):
		items := m.query.Items()
		if m.selected < len(items) {
			m.modal = newViewerModal(items[m.selected], m.now())
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		if m.query.Status != state.StatusSuccess || !m.query.HasMore() {
			return m, nil
		}
		m.query.Status = state.StatusLoadingMore
		return m, m.loadMoreCmd()

	case key.Matches(msg, m.keys.Retry):
		if m.query.Status != state.StatusError {
			return m, nil
		}
		m.query.Status = state.StatusLoading
		return m, m.startCmd()

	case key.Matches(msg, m.keys.Upload):
		if m.submitter == nil {
			return m, nil
		}
		m.uploads++
		modal := newUploadModal(m.ctx, m.submitter, m.uploads)
		m.modal = modal
		m.flash = ""
		return m, modal.focusCmd()
	}

	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = modal
	}
	return m, cmd
}

func (m Model) handleSnapshot(q state.Query) (tea.Model, tea.Cmd) {
	m.query = q
	if n := len(q.Items()); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	if q.Status == state.StatusIdle && m.pager != nil {
		return m, m.startCmd()
	}
	return m, nil
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.flash = "Uploaded " + msg.item.Title
		m.logger.Info("image uploaded", "id", msg.item.ID, "title", msg.item.Title)
	} else if !errors.As(msg.err, new(form.Errors)) {
		m.logger.Warn("upload failed", "error", msg.err)
	}

	var cmds []tea.Cmd
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		cmds = append(cmds, cmd)
	}
	if msg.err == nil {
		cmds = append(cmds, m.snapshotCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, ShowDescriptions: m.showDescriptions}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Query

type fetchDoneMsg struct {
	mode state.FetchMode
	err  error
}

type submitDoneMsg struct {
	formID int
	item   gallery.Item
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) snapshotCmd() tea.Cmd {
	if m.pager == nil {
		return nil
	}
	store, key := m.pager.Store(), m.key
	return func() tea.Msg {
		return snapshotMsg(store.Get(key))
	}
}

func (m Model) startCmd() tea.Cmd {
	ctx, pager, key := m.ctx, m.pager, m.key
	return func() tea.Msg {
		_, err := pager.Start(ctx, key)
		return fetchDoneMsg{mode: state.FetchFirst, err: err}
	}
}

func (m Model) loadMoreCmd() tea.Cmd {
	ctx, pager, key := m.ctx, m.pager, m.key
	return func() tea.Msg {
		_, err := pager.LoadMore(ctx, key)
		return fetchDoneMsg{mode: state.FetchNext, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
