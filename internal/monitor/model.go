package monitor

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/filter"
	"github.com/rileyhilliard/resmon/internal/logger"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/rileyhilliard/resmon/internal/procctl"
	"github.com/rileyhilliard/resmon/internal/sampler"
	"github.com/rileyhilliard/resmon/internal/series"
)

// Fixed rows around the tab content: title, gauges, tab bar, status line
// and footer.
const chromeHeight = 5

// actionTimeout bounds a single start or terminate request.
const actionTimeout = 10 * time.Second

// Actions performs the side effects the dashboard can request. It is
// satisfied by SystemActions in production and by fakes in tests.
type Actions interface {
	Start(ctx context.Context, commandLine string) (procctl.Result, error)
	Terminate(ctx context.Context, pid int32, force bool) (procctl.Result, error)
	HostInfo(ctx context.Context) (metrics.HostInfo, error)
}

// SystemActions runs processes through procctl and reads host info from a
// metric source.
type SystemActions struct {
	Source metrics.Source
}

func (a SystemActions) Start(ctx context.Context, commandLine string) (procctl.Result, error) {
	return procctl.Start(ctx, commandLine)
}

func (a SystemActions) Terminate(ctx context.Context, pid int32, force bool) (procctl.Result, error) {
	return procctl.Terminate(ctx, pid, force)
}

func (a SystemActions) HostInfo(ctx context.Context) (metrics.HostInfo, error) {
	return a.Source.HostInfo(ctx)
}

// Options configures the dashboard.
type Options struct {
	Window          int
	Filter          string
	MatchMode       filter.MatchMode
	Sort            SortOrder
	CriticalPercent float64
	ExcludeFstypes  []string
	Mouse           bool
	Accent          string
	Actions         Actions
	Logger          logger.Logger
}

type killTarget struct {
	PID   int32
	Name  string
	Force bool
}

// Model is the Bubble Tea model for the dashboard. It is a consumer of
// sampler events delivered through a channel.
type Model struct {
	events  <-chan sampler.Event
	opts    Options
	actions Actions
	log     logger.Logger
	zones   *zone.Manager

	width    int
	height   int
	tab      Tab
	quitting bool
	showHelp bool
	help     help.Model
	spinner  spinner.Model

	snap       *sampler.Snapshot
	volumes    []metrics.Volume
	haveDrives bool
	lastUpdate time.Time
	closed     bool
	host       *metrics.HostInfo

	cpu   *series.Buffer
	mem   *series.Buffer
	cores []*series.Buffer

	table       table.Model
	rows        []metrics.ProcessRecord
	selectedPID int32
	sortOrder   SortOrder

	mode        inputMode
	filterInput textinput.Model
	startInput  textinput.Model
	filterText  string
	savedFilter string
	matchMode   filter.MatchMode
	expr        filter.Expression
	pendingKill *killTarget

	status    string
	statusErr bool

	sysinfo viewport.Model
}

// eventMsg carries one sampler event into Update.
type eventMsg sampler.Event

// samplerClosedMsg reports that the event channel was closed.
type samplerClosedMsg struct{}

// hostInfoMsg carries the result of a host info read.
type hostInfoMsg struct {
	info metrics.HostInfo
	err  error
}

// actionMsg carries the outcome of a start or terminate request.
type actionMsg struct {
	result procctl.Result
}

// NewModel creates a dashboard reading sampler events from events.
func NewModel(events <-chan sampler.Event, opts Options) Model {
	if opts.Window < 2 {
		opts.Window = series.DefaultWindow
	}
	if opts.CriticalPercent <= 0 {
		opts.CriticalPercent = CriticalThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	SetAccent(opts.Accent)

	filterInput := textinput.New()
	filterInput.Prompt = "/ "
	filterInput.Placeholder = "name pid:42 user:root cpu>50 mem<100 threads>10"
	filterInput.PromptStyle = promptStyle

	startInput := textinput.New()
	startInput.Prompt = "Run: "
	startInput.Placeholder = "command line"
	startInput.PromptStyle = promptStyle

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = promptStyle

	m := Model{
		events:      events,
		opts:        opts,
		actions:     opts.Actions,
		log:         opts.Logger,
		zones:       zone.New(),
		help:        help.New(),
		spinner:     sp,
		cpu:         series.New(opts.Window, 0, 100, "CPU", ""),
		mem:         series.New(opts.Window, 0, 100, "Memory", string(ColorGraph)),
		table:       newProcessTable(),
		sortOrder:   opts.Sort,
		filterInput: filterInput,
		startInput:  startInput,
		matchMode:   opts.MatchMode,
		sysinfo:     viewport.New(0, 0),
	}
	m.setFilter(opts.Filter)
	m.filterInput.SetValue(opts.Filter)
	return m
}

// Init starts listening for sampler events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeNormal {
			_, cmd := m.handlePromptKey(msg)
			return m, cmd
		}
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		return m, m.forwardKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case spinner.TickMsg:
		if m.snap != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if msg.DriveChanged {
			m.volumes = msg.Volumes
			m.haveDrives = true
		}
		if msg.Snapshot != nil {
			m.applySnapshot(msg.Snapshot)
		}
		return m, waitForEvent(m.events)

	case samplerClosedMsg:
		m.closed = true
		m.setStatus("Sampler stopped", true)

	case hostInfoMsg:
		if msg.err != nil {
			m.setStatus(errors.Summary(msg.err), true)
		} else {
			info := msg.info
			m.host = &info
		}
		m.sysinfo.SetContent(m.renderSysInfo())

	case actionMsg:
		res := msg.result
		if res.OK() {
			m.log.Info("%s", res.String())
		} else {
			m.log.Warn("%s", res.String())
		}
		m.setStatus(res.String(), !res.OK())
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.zones.Scan(m.renderDashboard())
}

// waitForEvent blocks in a command goroutine until the sampler delivers the
// next event.
func waitForEvent(events <-chan sampler.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return samplerClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// applySnapshot feeds one cycle into the charts and the process table.
// Failed categories push an unavailable reading so charts keep scrolling.
func (m *Model) applySnapshot(snap *sampler.Snapshot) {
	m.snap = snap
	m.lastUpdate = snap.Timestamp

	if snap.Failed(metrics.CategoryCPU) {
		m.cpu.Push(math.NaN())
		for _, c := range m.cores {
			c.Push(math.NaN())
		}
	} else {
		m.cpu.Push(snap.AggregateCPUPercent)
		m.ensureCores(len(snap.PerCoreCPU))
		for i, v := range snap.PerCoreCPU {
			m.cores[i].Push(v)
		}
	}

	if snap.Failed(metrics.CategoryMemory) {
		m.mem.Push(math.NaN())
	} else {
		m.mem.Push(snap.MemoryPercent)
		if snap.MemoryTotalBytes > 0 {
			m.mem.SetLabel("Memory (" + metrics.FormatSize(snap.MemoryTotalBytes) + ")")
		}
	}

	m.refreshTable()
}

// ensureCores (re)creates one buffer per logical core when the count
// changes.
func (m *Model) ensureCores(n int) {
	if n == 0 || n == len(m.cores) {
		return
	}
	m.cores = make([]*series.Buffer, n)
	for i := range m.cores {
		m.cores[i] = series.New(m.opts.Window, 0, 100, coreLabel(i), "")
	}
}

func (m *Model) setTab(t Tab) {
	m.tab = t
}

func (m *Model) setFilter(text string) {
	m.filterText = text
	m.expr = filter.Compile(text, m.matchMode)
	m.refreshTable()
}

func (m *Model) openFilter() tea.Cmd {
	m.mode = modeFilter
	m.savedFilter = m.filterText
	m.filterInput.SetValue(m.filterText)
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m *Model) openStartPrompt() tea.Cmd {
	m.mode = modeStart
	m.startInput.Reset()
	return m.startInput.Focus()
}

// confirmTerminate asks for confirmation before terminating the selected
// process.
func (m *Model) confirmTerminate(force bool) {
	rec, ok := m.selected()
	if m.tab != TabProcesses || !ok {
		m.setStatus("No process selected", true)
		return
	}
	m.pendingKill = &killTarget{PID: rec.PID, Name: rec.Name, Force: force}
	m.mode = modeConfirmKill
}

func (m *Model) hostInfoCmd() tea.Cmd {
	actions := m.actions
	if actions == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		info, err := actions.HostInfo(ctx)
		return hostInfoMsg{info: info, err: err}
	}
}

func (m *Model) startCmd(commandLine string) tea.Cmd {
	actions := m.actions
	if actions == nil {
		m.setStatus("Starting processes is unavailable", true)
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := actions.Start(ctx, commandLine)
		if res.Err == nil {
			res.Err = err
		}
		return actionMsg{result: res}
	}
}

func (m *Model) terminateCmd(t killTarget) tea.Cmd {
	actions := m.actions
	if actions == nil {
		m.setStatus("Terminating processes is unavailable", true)
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := actions.Terminate(ctx, t.PID, t.Force)
		if res.Err == nil {
			res.Err = err
		}
		if res.Name == "" {
			res.Name = t.Name
		}
		return actionMsg{result: res}
	}
}

// forwardKey passes unhandled keys to the active tab's widget.
func (m *Model) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.tab {
	case TabProcesses:
		m.table, cmd = m.table.Update(msg)
		m.syncSelection()
	case TabSystem:
		m.sysinfo, cmd = m.sysinfo.Update(msg)
	}
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.opts.Mouse {
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.tab == TabProcesses {
			m.table.MoveUp(1)
			m.syncSelection()
		}
		return nil
	case tea.MouseButtonWheelDown:
		if m.tab == TabProcesses {
			m.table.MoveDown(1)
			m.syncSelection()
		}
		return nil
	}

	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	for t := Tab(0); t < tabCount; t++ {
		if m.inZone(tabZoneID(t), msg) {
			m.setTab(t)
			if t == TabSystem {
				return m.hostInfoCmd()
			}
			return nil
		}
	}
	if m.inZone(matchZoneID, msg) {
		m.toggleMatchMode()
	}
	return nil
}

func (m *Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

// resize distributes the terminal size across the widgets.
func (m *Model) resize() {
	content := m.contentHeight()
	m.help.Width = m.width
	m.filterInput.Width = m.width - 20
	m.startInput.Width = m.width - 10
	m.layoutTable(m.width, content)
	m.sysinfo.Width = m.width
	m.sysinfo.Height = content
	m.sysinfo.SetContent(m.renderSysInfo())
}

func (m Model) contentHeight() int {
	h := m.height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}
