package play

import "time"

// Kind identifies the presentation category of a transcript event.
type Kind string

const (
	// KindNarration is AI-generated story prose.
	KindNarration Kind = "narration"
	// KindDialogue is spoken dialogue from a character.
	KindDialogue Kind = "dialogue"
	// KindAction is a player-submitted action.
	KindAction Kind = "action"
	// KindCombat is a combat description.
	KindCombat Kind = "combat"
	// KindDiscovery marks a discovery (item, location, secret).
	KindDiscovery Kind = "discovery"
	// KindSystem is an out-of-story system notice.
	KindSystem Kind = "system"
)

// Origin records who authored a transcript event.
type Origin string

const (
	// OriginPlayer marks events typed by the player.
	OriginPlayer Origin = "player"
	// OriginAI marks events produced by the narrative engine.
	OriginAI Origin = "ai"
)

// Event is one entry in the play transcript. Events are immutable once
// created; replacement is remove-old, append-new.
type Event struct {
	// ID is unique within a session's transcript. Client-local ids are
	// generated at optimistic-insert time and never leave the process;
	// server ids arrive on fetch.
	ID        string
	Kind      Kind
	Text      string
	Origin    Origin
	CreatedAt time.Time
}

// SessionStatus is the lifecycle state of a play session, as reported by
// the backend.
type SessionStatus string

const (
	// StatusWaiting means the session has not started yet.
	StatusWaiting SessionStatus = "waiting"
	// StatusActive means the session is accepting actions.
	StatusActive SessionStatus = "active"
	// StatusPaused means play is temporarily suspended.
	StatusPaused SessionStatus = "paused"
	// StatusCompleted means the session has ended.
	StatusCompleted SessionStatus = "completed"
	// StatusArchived means the session is retained for reading only.
	StatusArchived SessionStatus = "archived"
)

// Session is the handle for the session being played. It is owned by one
// play view for the duration of a screen visit and never shared.
type Session struct {
	ID        string
	Title     string
	Status    SessionStatus
	TurnCount int
}

// PendingSubmission correlates one in-flight action with its optimistic
// transcript entry. It exists only between submit time and resolution.
type PendingSubmission struct {
	ClientLocalID string
	ActionText    string
	SubmittedAt   time.Time
}
