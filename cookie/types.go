package cookie

import (
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/go-playground/errors/v5"
)

const (
	// keyPrefix keeps these keys apart from the registered paseto claims.
	// Changing it invalidates every outstanding cookie.
	keyPrefix = "ganger:"
)

// Key is a type for storing values in a cookie
type Key string

const (
	// State is the anti-forgery value echoed back by the identity provider.
	State Key = "state"
	// Verifier is the PKCE code verifier for the pending sign-in.
	Verifier Key = "verifier"
	// ReturnTo is the application path to land on after sign-in.
	ReturnTo Key = "return_to"
	// Subject is the user an XSRF token was issued to. Empty for signed out callers.
	Subject Key = "subject"
	// Expires is when an XSRF token stops being accepted.
	Expires Key = "expires"
)

// Values holds data to be stored in the cookie
type Values struct {
	token paseto.Token
}

// NewValues returns a new empty Values
func NewValues() *Values {
	return &Values{token: paseto.NewToken()}
}

// Get decodes the JSON value stored under key into output, which must be a pointer.
func (v *Values) Get(key Key, output any) error {
	if err := v.token.Get(keyPrefix+string(key), output); err != nil {
		return errors.Wrap(err, "token.Get()")
	}

	return nil
}

// GetString returns the string stored under key.
func (v *Values) GetString(key Key) (string, error) {
	value, err := v.token.GetString(keyPrefix + string(key))
	if err != nil {
		return "", errors.Wrap(err, "token.GetString()")
	}

	return value, nil
}

// GetTime returns the time stored under key.
func (v *Values) GetTime(key Key) (time.Time, error) {
	t, err := v.token.GetTime(keyPrefix + string(key))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "token.GetTime()")
	}

	return t, nil
}

// Set stores value under key. value must be serialisable with encoding/json.
func (v *Values) Set(key Key, value any) error {
	if err := v.token.Set(keyPrefix+string(key), value); err != nil {
		return errors.Wrap(err, "token.Set()")
	}

	return nil
}

// SetString stores value under key.
func (v *Values) SetString(key Key, value string) *Values {
	v.token.SetString(keyPrefix+string(key), value)

	return v
}

// SetTime stores value under key, encoded as RFC3339.
func (v *Values) SetTime(key Key, value time.Time) *Values {
	v.token.SetTime(keyPrefix+string(key), value)

	return v
}
