package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is a stored bearer credential for the narrative backend.
type Credential struct {
	AccessToken string
	Username    string
	SavedAt     time.Time
}

// Accessor retrieves and clears the stored bearer credential.
type Accessor interface {
	// Get returns the stored credential. ok is false when no credential is
	// stored or the stored token has expired.
	Get() (cred Credential, ok bool, err error)
	// Clear removes the stored credential. Clearing an empty keyring is not
	// an error.
	Clear() error
}

// expired reports whether the token carries an exp claim in the past.
// Tokens without a parseable exp claim are assumed live; the backend is the
// authority and will answer 401 if not.
func expired(token string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
