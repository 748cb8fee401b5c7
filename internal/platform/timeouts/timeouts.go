// Package timeouts defines shared timeout constants used across the client.
// Centralizing these values prevents drift between call sites and makes the
// durations discoverable.
package timeouts

import "time"

// APIRequest caps the time allowed for a single metadata request against the
// narrative backend (session fetch, event pages, CRUD calls).
const APIRequest = 10 * time.Second

// SubmitAction caps the time allowed for a turn submission. The narrative
// engine generates prose on the server side, so this is deliberately much
// longer than APIRequest.
const SubmitAction = 90 * time.Second

// Shutdown limits how long teardown work (archive writes, trace flushing)
// may run after the play view exits.
const Shutdown = 5 * time.Second
