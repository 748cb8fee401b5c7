// Package credential stores the bearer credential for the narrative backend.
//
// The keyring is a small SQLite database under the client's data directory.
// Absence of a credential is not an error: callers receive ok=false and are
// expected to halt and direct the user to log in, never to retry.
package credential
