// Package teaui hosts the Bubble Tea program for the planner TUI.
package teaui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/board"
	"tableflip.dev/planner/pkg/form"
	"tableflip.dev/planner/pkg/review"
	"tableflip.dev/planner/pkg/session"
	"tableflip.dev/planner/pkg/store"
	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/components/calendar"
	"tableflip.dev/planner/pkg/tui/components/chat"
	"tableflip.dev/planner/pkg/tui/components/formview"
	"tableflip.dev/planner/pkg/tui/components/help"
	"tableflip.dev/planner/pkg/tui/components/kanban"
	"tableflip.dev/planner/pkg/tui/components/list"
	"tableflip.dev/planner/pkg/tui/components/sidebar"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/layout"
	"tableflip.dev/planner/pkg/tui/theme"
)

type viewMode int

const (
	modeKanban viewMode = iota
	modeList
	modeCalendar
	modeAI
)

func (m viewMode) String() string {
	switch m {
	case modeKanban:
		return "kanban"
	case modeList:
		return "list"
	case modeCalendar:
		return "calendar"
	case modeAI:
		return "ai"
	default:
		return "unknown"
	}
}

var viewEntries = []sidebar.Entry{
	{Key: "1", Label: "Kanban"},
	{Key: "2", Label: "List"},
	{Key: "3", Label: "Calendar"},
	{Key: "4", Label: "Assistant"},
}

const toastTTL = 4 * time.Second

// Service is everything the UI needs from the REST client.
type Service interface {
	board.API
	review.API
}

// Options wires the model to its collaborators. Store may be nil, in which
// case external login/logout is not watched.
type Options struct {
	API     Service
	Session *session.Session
	Store   store.Persistence
	Layout  layout.Policy
	Logger  *slog.Logger
	// Expired, when set, delivers a value each time the API client cleared
	// the session after a 401.
	Expired <-chan struct{}
}

type toast struct {
	id    int
	level events.NotifyLevel
	text  string
}

type toastExpiredMsg struct {
	id int
}

// Model contains UI state
type Model struct {
	session *session.Session
	persist store.Persistence
	policy  layout.Policy
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	theme  theme.Theme
	board  *board.Board
	form   *form.Form
	review *review.Controller

	kanban   *kanban.Model
	list     *list.Model
	calendar *calendar.Model
	formView *formview.Model
	chat     *chat.Model
	help     *help.Model
	sidebar  *sidebar.Model

	mode          viewMode
	sidebarOpen   bool
	helpOpen      bool
	confirm       *task.Task
	loginRequired bool
	toast         *toast
	toastSeq      int

	width  int
	height int

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
	expired     <-chan struct{}
}

// New builds the root model.
func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(nil)
	}
	th := theme.Default()
	ctx, cancel := context.WithCancel(context.Background())

	f := form.New(opts.API, log)
	ctl := review.New(opts.API, log)
	m := &Model{
		session:  sess,
		persist:  opts.Store,
		expired:  opts.Expired,
		policy:   opts.Layout,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		theme:    th,
		board:    board.New(opts.API, log),
		form:     f,
		review:   ctl,
		kanban:   kanban.New(th.Board),
		list:     list.New(th.Board),
		calendar: calendar.New(th.Calendar),
		formView: formview.New(f, th),
		chat:     chat.New(ctl, th),
		help:     help.New(60, 20),
		sidebar:  sidebar.New(th.Panel, viewEntries),
	}
	m.updateAccount()
	return m
}

// Init starts the session watcher and the first load.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{startWatchCmd(m.ctx, m.persist), m.waitForExpiry()}
	if m.session.Authenticated() {
		cmds = append(cmds, m.board.Load())
	} else {
		m.loginRequired = true
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the owning controller or component.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if d, ok := msg.(events.Describer); ok {
		m.log.Debug("tui: message", "type", fmt.Sprintf("%T", msg), "detail", d.Describe())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyPressMsg:
		m.handleKeyPress(msg, &cmds)

	case board.LoadedMsg, board.PatchedMsg, board.InsertedMsg:
		m.board.Update(msg)
	case board.CreatedMsg:
		if m.board.Update(msg) && msg.Err == nil {
			m.form.Close(msg.Session)
			m.notify(events.NotifySuccess, "Task created.", &cmds)
		}
	case board.ReplacedMsg:
		if m.board.Update(msg) && msg.Err == nil {
			m.form.Close(msg.Session)
		}
	case board.RemovedMsg:
		if m.board.Update(msg) && msg.Err == nil {
			m.form.CloseIfTarget(msg.ID)
			if m.list.EditingID() == msg.ID {
				m.list.CancelEdit()
			}
		}

	case form.GeneratedMsg:
		m.form.Update(msg)
		cmds = append(cmds, m.formView.Sync())
	case formview.SubmitMsg:
		m.submitForm(msg.Submission, &cmds)
	case formview.CancelMsg:
		m.formView.Sync()

	case review.InterpretedMsg, review.ItemsMsg, review.SavedMsg,
		review.ApprovedMsg, review.HistoryMsg, review.OpenedMsg:
		if follow, _ := m.review.Update(msg); follow != nil {
			cmds = append(cmds, follow)
		}

	case events.NewTaskMsg:
		if err := m.form.OpenCreate(msg.Due); err != nil {
			m.log.Debug("tui: open create", "err", err)
			break
		}
		cmds = append(cmds, m.formView.Sync())
	case events.EditTaskMsg:
		t, ok := m.board.Get(msg.Task.ID)
		if !ok {
			t = msg.Task
		}
		if err := m.form.OpenEdit(t); err != nil {
			m.log.Debug("tui: open edit", "err", err)
			break
		}
		cmds = append(cmds, m.formView.Sync())
	case events.DeleteTaskMsg:
		t := msg.Task
		m.confirm = &t
	case events.StatusChangeMsg:
		cmds = append(cmds, m.board.Patch(msg.ID, task.StatusPatch(msg.Status)))
	case events.PatchTaskMsg:
		cmds = append(cmds, m.board.Patch(msg.ID, msg.Patch))
	case events.TaskCreatedMsg:
		cmds = append(cmds, m.board.Insert(msg.TaskID))
	case events.NotifyMsg:
		m.notify(msg.Level, msg.Text, &cmds)
	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}

	case sidebar.SelectMsg:
		m.switchMode(viewMode(msg.Index), &cmds)
		if !m.policy.Wide(m.width) {
			m.sidebarOpen = false
		}

	case watchStartedMsg:
		if msg.err != nil {
			m.log.Warn("tui: session watch", "err", msg.err)
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		cmds = append(cmds, m.waitForWatch())
	case sessionExpiredMsg:
		m.log.Info("tui: api reported an expired session")
		if !m.loginRequired {
			m.enterLoginRequired()
		}
		cmds = append(cmds, m.waitForExpiry())
	case watchStoppedMsg:
		m.stopWatch()
		if m.ctx.Err() == nil {
			cmds = append(cmds, startWatchCmd(m.ctx, m.persist))
		}
	}

	m.checkSession()
	return m, tea.Batch(cmds...)
}

// checkSession switches to the login screen once the session is gone, for
// example after a 401 cleared it.
func (m *Model) checkSession() {
	if m.loginRequired || m.session.Authenticated() {
		return
	}
	m.log.Info("tui: session ended")
	m.enterLoginRequired()
}

func (m *Model) enterLoginRequired() {
	m.loginRequired = true
	m.board.Reset()
	m.review.Reset()
	m.chat.Reset()
	m.list.CancelEdit()
	m.form.Cancel()
	m.formView.Sync()
	m.confirm = nil
	m.updateAccount()
}

// resume reloads the session and, when one is present, the task collection.
func (m *Model) resume(cmds *[]tea.Cmd) {
	if err := m.session.Load(); err != nil {
		m.log.Debug("tui: session load", "err", err)
	}
	m.updateAccount()
	if !m.session.Authenticated() {
		if !m.loginRequired {
			m.enterLoginRequired()
		}
		return
	}
	m.loginRequired = false
	m.board.Reset()
	m.review.Reset()
	m.chat.Reset()
	*cmds = append(*cmds, m.board.Load())
}

func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	m.log.Info("tui: session file event", "event", ev.String())
	switch ev.Type {
	case store.EventSessionCleared:
		_ = m.session.Load()
		if !m.loginRequired {
			m.enterLoginRequired()
		}
	default:
		m.resume(cmds)
	}
}

func (m *Model) updateAccount() {
	if u, ok := m.session.User(); ok {
		if u.Email != "" {
			m.sidebar.SetAccount(u.Email)
			return
		}
		m.sidebar.SetAccount(u.Name)
		return
	}
	m.sidebar.SetAccount("not signed in")
}

func (m *Model) submitForm(sub form.Submission, cmds *[]tea.Cmd) {
	switch {
	case sub.Create != nil:
		*cmds = append(*cmds, m.board.Create(sub.Session, *sub.Create))
	case sub.Replace != nil:
		cmd, err := m.board.Replace(sub.Session, sub.ID, *sub.Replace)
		if err != nil {
			m.log.Debug("tui: replace refused", "id", sub.ID, "err", err)
			return
		}
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) notify(level events.NotifyLevel, text string, cmds *[]tea.Cmd) {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, level: level, text: text}
	*cmds = append(*cmds, tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	}))
}

func (m *Model) switchMode(next viewMode, cmds *[]tea.Cmd) {
	if next < modeKanban || next > modeAI || next == m.mode {
		return
	}
	if m.mode == modeAI {
		m.chat.Blur()
	}
	if m.mode == modeList {
		m.list.CancelEdit()
	}
	m.mode = next
	m.sidebar.SetActive(int(next))
	if next == modeAI {
		*cmds = append(*cmds, m.chat.Focus())
	}
}

func (m *Model) resize(width, height int) {
	wasWide := m.width > 0 && m.policy.Wide(m.width)
	first := m.width == 0
	m.width = width
	m.height = height
	wide := m.policy.Wide(width)
	switch {
	case first:
		m.sidebarOpen = wide
	case wide && !wasWide:
		m.sidebarOpen = true
	case !wide && wasWide:
		m.sidebarOpen = false
	}
	m.applySizes()
}

// bodyHeight leaves room for the status line and the key hints.
func (m *Model) bodyHeight() int {
	return max(m.height-2, 1)
}

func (m *Model) applySizes() {
	if m.width == 0 || m.height == 0 {
		return
	}
	frame := m.policy.Compute(m.width, m.bodyHeight(), m.sidebarOpen)
	m.kanban.SetSize(frame.MainWidth, frame.Height)
	m.list.SetSize(frame.MainWidth, frame.Height)
	m.calendar.SetSize(frame.MainWidth, frame.Height)
	m.chat.SetSize(frame.MainWidth, frame.Height)
	m.sidebar.SetSize(frame.SidebarWidth, frame.Height)
	m.formView.SetWidth(min(max(m.width-8, 30), 72))
	m.help.SetSize(min(max(m.width-8, 30), 80), max(m.height-4, 5))
}

// Run launches the interactive TUI program. Cancelling ctx stops it.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	defer m.shutdown()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) shutdown() {
	m.stopWatch()
	m.cancel()
}
