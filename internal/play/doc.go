// Package play implements the session play loop: the transcript store with
// optimistic-update semantics and the turn controller that drives one
// submit-action cycle against the narrative backend.
//
// # Turn lifecycle
//
// A turn begins with an optimistic append of the player's action to the
// transcript, before any network call. On success the backing submission is
// resolved and the returned narration is appended after the action. On
// failure the optimistic entry is rolled back and the transcript is exactly
// as it was before the turn started.
//
// At most one submission may be pending per store instance, and at most one
// network call is outstanding at a time. The controller enforces both by
// serializing turns and the end-session call through its Idle, Submitting,
// and Ending states; there is no locking because all state transitions
// happen on one logical thread of control, with network calls as the only
// suspension points.
package play
