package identity

import "errors"

// ErrRejected is returned when the identity provider refuses a token, code or
// refresh token. Callers treat it as "not signed in".
var ErrRejected = errors.New("identity provider rejected the credential")
