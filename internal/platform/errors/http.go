package errors

import "net/http"

// CodeForHTTPStatus maps a backend HTTP response status to a domain code.
// The mapping is applied at the transport boundary so the store and
// controller never branch on raw status values.
func CodeForHTTPStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return CodeValidation
	case status >= 500:
		return CodeTransport
	default:
		return CodeUnknown
	}
}
