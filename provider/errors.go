package provider

import "errors"

var (
	// ErrNotMember is returned when selecting a team the user does not belong to.
	ErrNotMember = errors.New("user is not a member of the team")

	// ErrNoAuthenticator is returned by SignIn and CompleteSignIn when the
	// Provider was built without an Authenticator.
	ErrNoAuthenticator = errors.New("no authenticator configured")
)
