package play

import (
	"context"
	"fmt"
	"log"

	"github.com/emberveil/storyweave/internal/platform/errors"
)

// Transport issues session calls against the narrative backend. Every call
// is a single attempt; retries are the caller's decision. On Unauthorized
// the transport reports the error and leaves credential policy to the view.
type Transport interface {
	FetchSession(ctx context.Context, sessionID string) (Session, error)
	StartSession(ctx context.Context, sessionID string) error
	FetchEvents(ctx context.Context, sessionID string) ([]Event, error)
	// SubmitAction returns the narrative continuation for the action.
	// An empty string means the backend accepted the action without
	// producing narration.
	SubmitAction(ctx context.Context, sessionID, text string) (string, error)
	EndSession(ctx context.Context, sessionID string) error
}

// Archiver receives the final transcript when a session ends. Saving is
// best-effort; archive failures never fail the end-session flow.
type Archiver interface {
	SaveTranscript(sessionID, title string, events []Event) error
}

// State is the controller's position in the play-loop state machine.
type State int

const (
	// StateLoading covers the initial session and event fetch.
	StateLoading State = iota
	// StateIdle accepts a new action submission.
	StateIdle
	// StateSubmitting has one action in flight.
	StateSubmitting
	// StateEnding has the end-session call in flight. No submissions are
	// accepted; at most one network call is ever outstanding.
	StateEnding
	// StateEnded is terminal; the session was ended by the player.
	StateEnded
	// StateError is terminal; the initial load failed.
	StateError
)

// String returns the state name for logs and status lines.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Controller orchestrates the play loop for one session view: it drives the
// store through optimistic insert, resolve, and rollback around each
// transport call. Load failures are terminal; turn failures roll back and
// leave the controller interactive.
type Controller struct {
	sessionID string
	transport Transport
	store     *Store
	archiver  Archiver

	state   State
	session Session
	loadErr error

	logf func(format string, args ...any)
}

// NewController creates a controller in the Loading state.
func NewController(sessionID string, transport Transport, store *Store) *Controller {
	return &Controller{
		sessionID: sessionID,
		transport: transport,
		store:     store,
		state:     StateLoading,
		logf:      log.Printf,
	}
}

// SetArchiver attaches an optional transcript archiver consulted when the
// session ends.
func (c *Controller) SetArchiver(a Archiver) {
	c.archiver = a
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Session returns the session handle fetched during Load.
func (c *Controller) Session() Session {
	return c.session
}

// LoadErr returns the error that moved the controller into StateError.
func (c *Controller) LoadErr() error {
	return c.loadErr
}

// Store returns the transcript store owned by this controller's view.
func (c *Controller) Store() *Store {
	return c.store
}

// Load performs the initial fetch cycle: session handle, implicit start for
// waiting sessions, then the full event history into the store. Any fetch
// failure is terminal for the view; the controller enters StateError and
// stays there.
func (c *Controller) Load(ctx context.Context) error {
	if c.state != StateLoading {
		return errors.New(errors.CodeControllerNotLoaded, "load already performed")
	}

	session, err := c.transport.FetchSession(ctx, c.sessionID)
	if err != nil {
		return c.failLoad(fmt.Errorf("fetch session: %w", err))
	}
	c.session = session

	// A waiting session is started implicitly. Fire-and-forget: the
	// event fetch proceeds regardless of the outcome, and a session that
	// is already active answers this with a non-fatal rejection anyway.
	if session.Status == StatusWaiting {
		if err := c.transport.StartSession(ctx, c.sessionID); err != nil {
			c.logf("start session %s: %v", c.sessionID, err)
		} else {
			c.session.Status = StatusActive
		}
	}

	events, err := c.transport.FetchEvents(ctx, c.sessionID)
	if err != nil {
		return c.failLoad(fmt.Errorf("fetch events: %w", err))
	}
	if err := c.store.Initialize(events); err != nil {
		return c.failLoad(fmt.Errorf("initialize transcript: %w", err))
	}

	c.state = StateIdle
	return nil
}

func (c *Controller) failLoad(err error) error {
	c.state = StateError
	c.loadErr = err
	return err
}

// Submit runs one full turn: optimistic insert, transport call, then
// resolve or rollback. On failure the transcript is restored and the
// controller returns to Idle; the caller surfaces the error and the user
// may resubmit.
func (c *Controller) Submit(ctx context.Context, text string) error {
	clientLocalID, err := c.BeginSubmit(text)
	if err != nil {
		return err
	}
	narrative, submitErr := c.transport.SubmitAction(ctx, c.sessionID, text)
	return c.FinishSubmit(clientLocalID, narrative, submitErr)
}

// BeginSubmit is the synchronous first half of a turn: it validates the
// preconditions, appends the optimistic entry, and moves the controller to
// Submitting. The entry is visible to renderers before any network call.
//
// Violated preconditions (not idle, empty text, pending submission) are
// defensive rejections: the view disables the submit control in those
// states, so callers treat the error as silent.
func (c *Controller) BeginSubmit(text string) (string, error) {
	if c.state != StateIdle {
		return "", errors.New(errors.CodeControllerNotIdle, "controller is not idle")
	}
	clientLocalID, err := c.store.BeginOptimisticSubmission(text)
	if err != nil {
		return "", err
	}
	c.state = StateSubmitting
	return clientLocalID, nil
}

// FinishSubmit is the synchronous second half of a turn, applied once the
// transport call settles. Success resolves the pending submission with the
// narrative; failure rolls the optimistic entry back. Either way the
// controller returns to Idle.
func (c *Controller) FinishSubmit(clientLocalID string, narrative string, submitErr error) error {
	if c.state != StateSubmitting {
		return errors.New(errors.CodeControllerNotIdle, "no submission in flight")
	}
	c.state = StateIdle

	if submitErr != nil {
		if err := c.store.RollbackSubmission(clientLocalID); err != nil {
			// Stale id: the submission already settled. Benign.
			c.logf("rollback submission %s: %v", clientLocalID, err)
		}
		return fmt.Errorf("submit action: %w", submitErr)
	}

	if err := c.store.ResolveSubmission(clientLocalID, narrative); err != nil {
		// Stale id: double resolution from a re-render race. Benign.
		c.logf("resolve submission %s: %v", clientLocalID, err)
		return nil
	}
	c.session.TurnCount++
	return nil
}

// End ends the session. It requires an Idle controller (no turn in flight)
// and the caller is expected to have confirmed the action with the user.
// On success the controller is terminal and the final transcript is offered
// to the archiver; on failure the controller returns to Idle and the
// session remains playable.
func (c *Controller) End(ctx context.Context) error {
	if err := c.BeginEnd(); err != nil {
		return err
	}
	return c.FinishEnd(c.transport.EndSession(ctx, c.sessionID))
}

// BeginEnd is the synchronous first half of ending the session: it moves an
// Idle controller to Ending so no submission can start while the end call
// is in flight. The caller runs the transport call and reports the outcome
// through FinishEnd.
func (c *Controller) BeginEnd() error {
	if c.state != StateIdle {
		return errors.New(errors.CodeControllerNotIdle, "controller is not idle")
	}
	c.state = StateEnding
	return nil
}

// FinishEnd applies the outcome of the end-session transport call. A nil
// error moves the controller to Ended and archives the transcript; a
// non-nil error returns the controller to Idle.
func (c *Controller) FinishEnd(endErr error) error {
	if c.state != StateEnding {
		return errors.New(errors.CodeControllerNotIdle, "no end in flight")
	}
	if endErr != nil {
		c.state = StateIdle
		return fmt.Errorf("end session: %w", endErr)
	}
	c.state = StateEnded
	c.session.Status = StatusCompleted

	if c.archiver != nil {
		if err := c.archiver.SaveTranscript(c.sessionID, c.session.Title, c.store.Snapshot()); err != nil {
			c.logf("archive transcript %s: %v", c.sessionID, err)
		}
	}
	return nil
}
