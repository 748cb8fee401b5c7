// Package playui renders the session play view: the transcript, the action
// input, and the submit affordance. It is a read-only consumer of the play
// store; all transcript mutations happen through the turn controller, on
// the bubbletea update loop's single thread of control. Network calls run
// as commands and report back through typed messages.
package playui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emberveil/storyweave/internal/credential"
	"github.com/emberveil/storyweave/internal/platform/errors"
	"github.com/emberveil/storyweave/internal/play"
)

// noticeFadeDelay is how long a transient error stays in the status bar.
const noticeFadeDelay = 4 * time.Second

// loadDoneMsg reports the initial load cycle's outcome.
type loadDoneMsg struct {
	err error
}

// submitDoneMsg reports the settled transport call for one turn.
type submitDoneMsg struct {
	clientLocalID string
	narrative     string
	err           error
}

// endDoneMsg reports the end-session transport call's outcome.
type endDoneMsg struct {
	err error
}

// noticeFadeMsg clears the transient status-bar notice.
type noticeFadeMsg struct{}

// clipboardDoneMsg reports the copy-narration outcome.
type clipboardDoneMsg struct {
	err error
}

// Model is the bubbletea model for one play session screen.
type Model struct {
	controller  *play.Controller
	transport   play.Transport
	credentials credential.Accessor
	theme       Theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	confirmEnd bool
	notice     string
	fatal      string
	quitting   bool
}

// New creates the play view for the given controller. The transport is the
// same one the controller uses; the view runs its network calls in
// commands and applies the results through the controller's synchronous
// finish methods.
func New(controller *play.Controller, transport play.Transport, credentials credential.Accessor) Model {
	input := textinput.New()
	input.Placeholder = "What do you do?"
	input.CharLimit = 2000

	spin := spinner.New()
	spin.Spinner = spinner.Points

	return Model{
		controller:  controller,
		transport:   transport,
		credentials: credentials,
		theme:       DefaultTheme(),
		input:       input,
		spin:        spin,
	}
}

// Init starts the load cycle and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		return loadDoneMsg{err: controller.Load(context.Background())}
	}
}

func (m Model) submitCmd(clientLocalID, text string) tea.Cmd {
	transport := m.transport
	sessionID := m.controller.Store().SessionID()
	return func() tea.Msg {
		narrative, err := transport.SubmitAction(context.Background(), sessionID, text)
		return submitDoneMsg{clientLocalID: clientLocalID, narrative: narrative, err: err}
	}
}

func (m Model) endCmd() tea.Cmd {
	transport := m.transport
	sessionID := m.controller.Store().SessionID()
	return func() tea.Msg {
		return endDoneMsg{err: transport.EndSession(context.Background(), sessionID)}
	}
}

func noticeFadeCmd() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardDoneMsg{err: clipboard.WriteAll(text)}
	}
}

// Update routes messages through the play state machine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case loadDoneMsg:
		return m.handleLoadDone(msg)

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case endDoneMsg:
		return m.handleEndDone(msg)

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case clipboardDoneMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
			return m, noticeFadeCmd()
		}
		m.notice = "narration copied"
		return m, noticeFadeCmd()

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// busy reports whether a spinner should animate.
func (m Model) busy() bool {
	state := m.controller.State()
	return state == play.StateLoading || state == play.StateSubmitting || state == play.StateEnding
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	// Header, status bar, and input line each take one row.
	vpHeight := msg.Height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vpHeight
	m.ready = true
	m.input.Width = msg.Width - 4
	m.refreshTranscript()
	return m
}

func (m *Model) handleLoadDone(msg loadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.handleFatal(msg.err)
	}
	m.input.Focus()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return *m, nil
}

func (m *Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	err := m.controller.FinishSubmit(msg.clientLocalID, msg.narrative, msg.err)
	m.refreshTranscript()
	m.viewport.GotoBottom()
	if err != nil {
		if !errors.CodeOf(err).Recoverable() {
			return m.handleFatal(err)
		}
		// The failed action is gone from the transcript; the notice is
		// the only trace. The typed text is not restored.
		m.notice = "the narrator did not answer: " + err.Error()
		return *m, noticeFadeCmd()
	}
	return *m, nil
}

func (m *Model) handleEndDone(msg endDoneMsg) (tea.Model, tea.Cmd) {
	if err := m.controller.FinishEnd(msg.err); err != nil {
		if !errors.CodeOf(err).Recoverable() {
			return m.handleFatal(err)
		}
		m.notice = "could not end the session: " + err.Error()
		return *m, noticeFadeCmd()
	}
	m.quitting = true
	return *m, tea.Quit
}

// handleFatal applies the view's credential policy for terminal failures:
// a rejected credential is cleared here, not in the transport.
func (m *Model) handleFatal(err error) (tea.Model, tea.Cmd) {
	if errors.CodeOf(err) == errors.CodeUnauthorized {
		if clearErr := m.credentials.Clear(); clearErr == nil {
			m.fatal = "your credential was rejected and has been cleared; run `storyweave login`"
		} else {
			m.fatal = "your credential was rejected; run `storyweave login`"
		}
	} else {
		m.fatal = err.Error()
	}
	return *m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Terminal states: any key leaves the screen.
	if m.fatal != "" || m.controller.State() == play.StateError {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirmEnd {
		switch msg.String() {
		case "y", "Y":
			m.confirmEnd = false
			if err := m.controller.BeginEnd(); err != nil {
				// Defensive: confirmation is only offered while Idle.
				return m, nil
			}
			return m, tea.Batch(m.endCmd(), m.spin.Tick)
		default:
			m.confirmEnd = false
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.controller.State() == play.StateIdle {
			m.confirmEnd = true
		}
		return m, nil

	case "ctrl+y":
		if text, ok := m.lastNarration(); ok {
			return m, copyCmd(text)
		}
		return m, nil

	case "enter":
		return m.submit()

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// submit starts one turn: the optimistic insert happens synchronously here
// so the player sees their action before the network call resolves.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.controller.State() != play.StateIdle {
		return m, nil
	}

	clientLocalID, err := m.controller.BeginSubmit(text)
	if err != nil {
		// Defensive: the control is disabled in every state that would
		// reject, so a rejection here is silent.
		return m, nil
	}
	m.input.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.submitCmd(clientLocalID, text), m.spin.Tick)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.controller.State() != play.StateIdle {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// lastNarration returns the text of the most recent AI narration entry.
func (m Model) lastNarration() (string, bool) {
	events := m.controller.Store().Snapshot()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Origin == play.OriginAI {
			return events[i].Text, true
		}
	}
	return "", false
}

// refreshTranscript re-renders the transcript into the viewport. The entry
// backing the pending submission is always the last one, so it alone gets
// the pending style.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	events := m.controller.Store().Snapshot()
	pending := m.controller.Store().HasPendingSubmission()

	var b strings.Builder
	for i, e := range events {
		isPending := pending && i == len(events)-1
		b.WriteString(m.renderEvent(e, isPending))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
}

func (m Model) renderEvent(e play.Event, isPending bool) string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	if isPending {
		return m.theme.Pending.Width(width).Render("> " + e.Text + " …")
	}

	switch e.Kind {
	case play.KindAction:
		return m.theme.Action.Width(width).Render("> " + e.Text)
	case play.KindDialogue:
		return m.theme.Dialogue.Width(width).Render(e.Text)
	case play.KindCombat:
		return m.theme.Combat.Width(width).Render(e.Text)
	case play.KindDiscovery:
		return m.theme.Discovery.Width(width).Render(e.Text)
	case play.KindSystem:
		return m.theme.System.Width(width).Render(e.Text)
	default:
		return m.theme.Narration.Width(width).Render(e.Text)
	}
}

// View renders the play screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.fatal != "" {
		return m.theme.ErrorText.Render(m.fatal) + "\n" + m.theme.Status.Render("press any key to leave")
	}

	switch m.controller.State() {
	case play.StateLoading:
		return m.spin.View() + " entering the story…"
	case play.StateError:
		err := m.controller.LoadErr()
		return m.theme.ErrorText.Render(fmt.Sprintf("could not open the session: %v", err)) + "\n" +
			m.theme.Status.Render("press any key to leave")
	case play.StateEnded:
		return m.theme.Status.Render("the session has ended")
	}

	if !m.ready {
		return m.spin.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.statusView(),
		m.inputView(),
	)
}

func (m Model) headerView() string {
	session := m.controller.Session()
	title := session.Title
	if title == "" {
		title = session.ID
	}
	meta := fmt.Sprintf("  %s · turn %d", session.Status, session.TurnCount)
	return m.theme.Header.Render(title) + m.theme.Status.Render(meta)
}

func (m Model) statusView() string {
	if m.confirmEnd {
		return m.theme.Confirm.Render("end this session? (y/n)")
	}
	if m.notice != "" {
		return m.theme.Notice.Render(m.notice)
	}
	switch m.controller.State() {
	case play.StateSubmitting:
		return m.theme.Status.Render(m.spin.View() + " the narrator is thinking…")
	case play.StateEnding:
		return m.theme.Status.Render(m.spin.View() + " ending the session…")
	}
	return m.theme.Status.Render("enter to act · esc to end session · ctrl+y copy narration · ctrl+c leave")
}

func (m Model) inputView() string {
	if m.controller.State() != play.StateIdle {
		// The submit control is disabled outside Idle.
		return m.theme.Status.Render("…")
	}
	return "> " + m.input.View()
}
