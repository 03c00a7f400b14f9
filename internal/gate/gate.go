// Package gate is the coarse pre-command login check. It reads only the
// token mirror file, so a command can refuse early without parsing the
// credential record. Presence of the mirror means "probably logged in";
// the API is still the authority and may answer 401.
package gate

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn is returned when no token mirror exists.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenMirror exposes the mirror read, satisfied by
// *state.CredentialStore.
type TokenMirror interface {
	MirrorToken() string
}

// RequireLogin fails fast when nobody is logged in.
func RequireLogin(mirror TokenMirror) error {
	if mirror.MirrorToken() == "" {
		return fmt.Errorf("%w, run 'courtside login' first", ErrNotLoggedIn)
	}
	return nil
}
