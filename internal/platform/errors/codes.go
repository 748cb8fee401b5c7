// Package errors provides structured error handling for the client.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Transport errors
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeTransport         Code = "TRANSPORT"
	CodeCredentialMissing Code = "CREDENTIAL_MISSING"

	// Transcript errors
	CodeActionEmpty          Code = "ACTION_EMPTY"
	CodeSubmissionPending    Code = "SUBMISSION_PENDING"
	CodeSubmissionNotPending Code = "SUBMISSION_NOT_PENDING"
	CodeTranscriptInitLocked Code = "TRANSCRIPT_INIT_LOCKED"

	// Controller errors
	CodeControllerNotIdle   Code = "CONTROLLER_NOT_IDLE"
	CodeControllerNotLoaded Code = "CONTROLLER_NOT_LOADED"
	CodeSessionEnded        Code = "SESSION_ENDED"
)

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

// Recoverable reports whether an error with this code leaves the play view
// interactive. Load-time failures are terminal; turn-time failures roll back
// and the user may retype.
func (c Code) Recoverable() bool {
	switch c {
	case CodeTransport, CodeValidation, CodeActionEmpty,
		CodeSubmissionNotPending, CodeSubmissionPending:
		return true
	default:
		return false
	}
}
