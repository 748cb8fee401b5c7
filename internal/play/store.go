package play

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberveil/storyweave/internal/id"
	"github.com/emberveil/storyweave/internal/platform/errors"
)

// Store maintains the ordered transcript for exactly one session and owns
// the optimistic-update semantics around a submitted action. One instance
// per open play view; it is not shared and needs no locking.
type Store struct {
	sessionID string
	events    []Event
	pending   *PendingSubmission

	// seen tracks every id that has ever appeared in this store instance so
	// freshly generated client-local ids cannot collide with server ids or
	// with earlier local ids.
	seen map[string]bool

	clock func() time.Time
	newID func() (string, error)
}

// NewStore creates an empty transcript store for the given session.
func NewStore(sessionID string) *Store {
	return &Store{
		sessionID: sessionID,
		seen:      make(map[string]bool),
		clock:     time.Now,
		newID:     id.NewID,
	}
}

// SessionID returns the session this store belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Initialize replaces the entire transcript with the given sequence, in the
// order given. It may only be called before the user can interact: calling
// it while a submission is pending is an error.
func (s *Store) Initialize(events []Event) error {
	if s.pending != nil {
		return errors.New(errors.CodeTranscriptInitLocked, "cannot initialize transcript while a submission is pending")
	}
	s.events = make([]Event, len(events))
	copy(s.events, events)
	s.seen = make(map[string]bool, len(events))
	for _, e := range events {
		s.seen[e.ID] = true
	}
	return nil
}

// BeginOptimisticSubmission appends a player-authored action entry to the
// transcript and records the pending submission. The entry is visible in
// Snapshot immediately, before any network call resolves. Returns the
// client-local id correlating the entry with its eventual resolution.
func (s *Store) BeginOptimisticSubmission(actionText string) (string, error) {
	actionText = strings.TrimSpace(actionText)
	if actionText == "" {
		return "", errors.New(errors.CodeActionEmpty, "action text is empty")
	}
	if s.pending != nil {
		return "", errors.New(errors.CodeSubmissionPending, "a submission is already pending")
	}

	clientLocalID, err := s.uniqueID()
	if err != nil {
		return "", fmt.Errorf("generate client-local id: %w", err)
	}

	now := s.clock().UTC()
	s.events = append(s.events, Event{
		ID:        clientLocalID,
		Kind:      KindAction,
		Text:      actionText,
		Origin:    OriginPlayer,
		CreatedAt: now,
	})
	s.pending = &PendingSubmission{
		ClientLocalID: clientLocalID,
		ActionText:    actionText,
		SubmittedAt:   now,
	}
	return clientLocalID, nil
}

// ResolveSubmission completes a pending submission. With non-empty
// narrativeText it appends one AI narration entry after the action; the
// optimistic action entry stays as the record of what was submitted. With
// empty narrativeText only the pending record is removed.
//
// Resolving an id that is not currently pending is a benign failure:
// the transcript is untouched and the caller should ignore the error.
func (s *Store) ResolveSubmission(clientLocalID string, narrativeText string) error {
	if s.pending == nil || s.pending.ClientLocalID != clientLocalID {
		return errors.New(errors.CodeSubmissionNotPending, "submission is not pending")
	}
	s.pending = nil

	narrativeText = strings.TrimSpace(narrativeText)
	if narrativeText == "" {
		return nil
	}

	narrationID, err := s.uniqueID()
	if err != nil {
		return fmt.Errorf("generate narration id: %w", err)
	}
	s.events = append(s.events, Event{
		ID:        narrationID,
		Kind:      KindNarration,
		Text:      narrativeText,
		Origin:    OriginAI,
		CreatedAt: s.clock().UTC(),
	})
	return nil
}

// RollbackSubmission removes both the pending record and the optimistic
// transcript entry, leaving the transcript exactly as it was before
// BeginOptimisticSubmission. Rolling back an id that is not currently
// pending is a benign failure.
func (s *Store) RollbackSubmission(clientLocalID string) error {
	if s.pending == nil || s.pending.ClientLocalID != clientLocalID {
		return errors.New(errors.CodeSubmissionNotPending, "submission is not pending")
	}
	s.pending = nil

	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ID == clientLocalID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	return nil
}

// Snapshot returns the current transcript in display order. The returned
// slice is a copy; mutating it does not affect the store.
func (s *Store) Snapshot() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// HasPendingSubmission reports whether a submission is in flight.
func (s *Store) HasPendingSubmission() bool {
	return s.pending != nil
}

// Pending returns the in-flight submission, if any.
func (s *Store) Pending() (PendingSubmission, bool) {
	if s.pending == nil {
		return PendingSubmission{}, false
	}
	return *s.pending, true
}

// uniqueID generates a client-local id that has never appeared in this
// store instance and marks it as seen.
func (s *Store) uniqueID() (string, error) {
	for {
		candidate, err := s.newID()
		if err != nil {
			return "", err
		}
		if !s.seen[candidate] {
			s.seen[candidate] = true
			return candidate, nil
		}
	}
}
