package playui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emberveil/storyweave/internal/credential"
	"github.com/emberveil/storyweave/internal/platform/errors"
	"github.com/emberveil/storyweave/internal/play"
)

type fakeTransport struct {
	session   play.Session
	events    []play.Event
	narrative string
	submitErr error
	endErr    error
}

func (f *fakeTransport) FetchSession(ctx context.Context, sessionID string) (play.Session, error) {
	return f.session, nil
}

func (f *fakeTransport) StartSession(ctx context.Context, sessionID string) error {
	return nil
}

func (f *fakeTransport) FetchEvents(ctx context.Context, sessionID string) ([]play.Event, error) {
	return f.events, nil
}

func (f *fakeTransport) SubmitAction(ctx context.Context, sessionID, text string) (string, error) {
	return f.narrative, f.submitErr
}

func (f *fakeTransport) EndSession(ctx context.Context, sessionID string) error {
	return f.endErr
}

type fakeCredentials struct {
	cleared bool
}

func (f *fakeCredentials) Get() (credential.Credential, bool, error) {
	return credential.Credential{AccessToken: "token"}, true, nil
}

func (f *fakeCredentials) Clear() error {
	f.cleared = true
	return nil
}

// loadedModel builds a model whose controller has completed the load cycle,
// the way the real program reaches Idle: via the load message.
func loadedModel(t *testing.T, transport *fakeTransport, creds *fakeCredentials) Model {
	t.Helper()
	controller := play.NewController("sess-1", transport, play.NewStore("sess-1"))
	m := New(controller, transport, creds)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	if err := controller.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	updated, _ = m.Update(loadDoneMsg{})
	return updated.(Model)
}

func TestLoadReachesIdle(t *testing.T) {
	transport := &fakeTransport{
		session: play.Session{ID: "sess-1", Title: "The Hollow Crown", Status: play.StatusActive},
		events: []play.Event{
			{ID: "e1", Kind: play.KindNarration, Text: "You awaken in a cold cell.", Origin: play.OriginAI},
		},
	}
	m := loadedModel(t, transport, &fakeCredentials{})

	if m.controller.State() != play.StateIdle {
		t.Fatalf("expected Idle, got %s", m.controller.State())
	}
	view := m.View()
	if !strings.Contains(view, "The Hollow Crown") {
		t.Fatalf("expected header in view, got:\n%s", view)
	}
	if !strings.Contains(view, "You awaken in a cold cell.") {
		t.Fatalf("expected transcript in view, got:\n%s", view)
	}
}

func TestSubmitFlow(t *testing.T) {
	transport := &fakeTransport{
		session:   play.Session{ID: "sess-1", Status: play.StatusActive},
		narrative: "The door creaks open.",
	}
	m := loadedModel(t, transport, &fakeCredentials{})

	m.input.SetValue("I open the door")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if m.controller.State() != play.StateSubmitting {
		t.Fatalf("expected Submitting after enter, got %s", m.controller.State())
	}
	// The optimistic entry is visible before the network call resolves.
	snapshot := m.controller.Store().Snapshot()
	if len(snapshot) != 1 || snapshot[0].Text != "I open the door" {
		t.Fatalf("expected optimistic entry, got %+v", snapshot)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}

	pending, ok := m.controller.Store().Pending()
	if !ok {
		t.Fatal("expected pending submission")
	}
	updated, _ = m.Update(submitDoneMsg{
		clientLocalID: pending.ClientLocalID,
		narrative:     "The door creaks open.",
	})
	m = updated.(Model)

	if m.controller.State() != play.StateIdle {
		t.Fatalf("expected Idle after resolution, got %s", m.controller.State())
	}
	snapshot = m.controller.Store().Snapshot()
	if len(snapshot) != 2 || snapshot[1].Text != "The door creaks open." {
		t.Fatalf("expected narration appended, got %+v", snapshot)
	}
}

func TestSubmitFailureShowsNoticeAndRollsBack(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	m.input.SetValue("I attack")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	pending, _ := m.controller.Store().Pending()
	updated, cmd := m.Update(submitDoneMsg{
		clientLocalID: pending.ClientLocalID,
		err:           errors.New(errors.CodeTransport, "connection reset"),
	})
	m = updated.(Model)

	if m.controller.State() != play.StateIdle {
		t.Fatalf("expected Idle after rollback, got %s", m.controller.State())
	}
	if got := len(m.controller.Store().Snapshot()); got != 0 {
		t.Fatalf("expected rolled-back transcript, got %d entries", got)
	}
	if m.notice == "" {
		t.Fatal("expected a transient error notice")
	}
	if cmd == nil {
		t.Fatal("expected a fade command for the notice")
	}
	updated, _ = m.Update(noticeFadeMsg{})
	m = updated.(Model)
	if m.notice != "" {
		t.Fatal("expected notice cleared after fade")
	}
}

func TestEmptySubmitIgnored(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	m.input.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if cmd != nil {
		t.Fatal("expected no command for empty input")
	}
	if m.controller.State() != play.StateIdle {
		t.Fatalf("expected Idle, got %s", m.controller.State())
	}
}

func TestSecondSubmitBlockedWhileInFlight(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	m.input.SetValue("first")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	m.input.SetValue("second")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if cmd != nil {
		t.Fatal("expected no command while a turn is in flight")
	}
	if got := len(m.controller.Store().Snapshot()); got != 1 {
		t.Fatalf("expected only the first optimistic entry, got %d", got)
	}
}

func TestEndSessionConfirmFlow(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if !m.confirmEnd {
		t.Fatal("expected end confirmation prompt")
	}
	if !strings.Contains(m.View(), "end this session?") {
		t.Fatal("expected confirmation in view")
	}

	// Declining returns to play.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)
	if m.confirmEnd {
		t.Fatal("expected confirmation dismissed")
	}

	// Confirming issues the end command and blocks further turns.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected an end-session command after confirmation")
	}
	if m.controller.State() != play.StateEnding {
		t.Fatalf("expected Ending while the call is in flight, got %s", m.controller.State())
	}

	updated, cmd = m.Update(endDoneMsg{})
	m = updated.(Model)
	if m.controller.State() != play.StateEnded {
		t.Fatalf("expected Ended, got %s", m.controller.State())
	}
	if cmd == nil {
		t.Fatal("expected quit command after ending")
	}
}

func TestEndFailureStaysInSession(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)

	updated, _ = m.Update(endDoneMsg{err: errors.New(errors.CodeTransport, "backend unavailable")})
	m = updated.(Model)

	if m.controller.State() != play.StateIdle {
		t.Fatalf("expected Idle after failed end, got %s", m.controller.State())
	}
	if m.fatal != "" {
		t.Fatalf("expected no terminal error, got %q", m.fatal)
	}
	if m.notice == "" {
		t.Fatal("expected an error notice")
	}
}

func TestSubmitDuringEndDoesNotCorruptEnd(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)

	// A turn typed while the end call is in flight must be ignored, not
	// raced against the end.
	m.input.SetValue("one last thing")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd != nil {
		t.Fatal("expected no submit command while the end call is in flight")
	}
	if got := len(m.controller.Store().Snapshot()); got != 0 {
		t.Fatalf("expected no optimistic entry while ending, got %d", got)
	}

	updated, cmd = m.Update(endDoneMsg{})
	m = updated.(Model)
	if m.fatal != "" {
		t.Fatalf("expected the end to settle cleanly, got terminal error %q", m.fatal)
	}
	if m.controller.State() != play.StateEnded {
		t.Fatalf("expected Ended, got %s", m.controller.State())
	}
	if cmd == nil {
		t.Fatal("expected quit command after ending")
	}
}

func TestUnauthorizedClearsCredential(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	creds := &fakeCredentials{}
	m := loadedModel(t, transport, creds)

	m.input.SetValue("I act")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	pending, _ := m.controller.Store().Pending()
	updated, _ = m.Update(submitDoneMsg{
		clientLocalID: pending.ClientLocalID,
		err:           errors.New(errors.CodeUnauthorized, "token rejected"),
	})
	m = updated.(Model)

	if !creds.cleared {
		t.Fatal("expected the view to clear the rejected credential")
	}
	if m.fatal == "" {
		t.Fatal("expected a terminal message")
	}
}

func TestLoadErrorIsTerminal(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	controller := play.NewController("sess-1", transport, play.NewStore("sess-1"))
	m := New(controller, transport, &fakeCredentials{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	updated, _ = m.Update(loadDoneMsg{err: errors.New(errors.CodeNotFound, "session not found")})
	m = updated.(Model)

	if !strings.Contains(m.View(), "session not found") {
		t.Fatalf("expected terminal error view, got:\n%s", m.View())
	}

	// Any key leaves the screen.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command from terminal error state")
	}
}

func TestPendingEntryStyledDistinctly(t *testing.T) {
	transport := &fakeTransport{session: play.Session{ID: "sess-1", Status: play.StatusActive}}
	m := loadedModel(t, transport, &fakeCredentials{})

	m.input.SetValue("I listen at the door")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !strings.Contains(m.View(), "I listen at the door …") {
		t.Fatalf("expected pending affordance on the in-flight entry, got:\n%s", m.View())
	}
}
