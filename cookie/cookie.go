// Package cookie implements the encrypted, short-lived cookie that carries an
// in-progress sign-in (state, PKCE verifier, return path) across the identity
// provider redirect.
package cookie

import (
	"net/http"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
)

// Client implements reading and writing encrypted cookies
type Client struct {
	pasetoKey paseto.V4SymmetricKey
	domain    string
	secure    bool
}

// Option configures a Client.
type Option func(*Client)

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(c *Client) {
		c.domain = domain
	}
}

// WithSecure marks cookies Secure.
func WithSecure(secure bool) Option {
	return func(c *Client) {
		c.secure = secure
	}
}

// New returns a new Client
func New(masterKeyBase64 string, options ...Option) (*Client, error) {
	pasetoKey, err := createPasetoKey(masterKeyBase64)
	if err != nil {
		return nil, errors.Wrap(err, "createPasetoKey()")
	}

	c := &Client{pasetoKey: pasetoKey}
	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Read reads and decrypts the named cookie. An expired or tampered cookie
// reads as not found.
func (c *Client) Read(r *http.Request, cookieName string) (values *Values, found bool, err error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return NewValues(), false, nil
		}

		return NewValues(), false, errors.Wrap(err, "http.Request.Cookie()")
	}

	values, err = c.decrypt(cookieName, cookie.Value)
	if err != nil {
		logger.FromReq(r).Error(err)

		return NewValues(), false, nil
	}

	return values, true, nil
}

// Write encrypts values into the named cookie, valid for maxAge.
func (c *Client) Write(w http.ResponseWriter, cookieName string, maxAge time.Duration, values *Values) {
	expiration := time.Now().Add(maxAge)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    c.encrypt(cookieName, expiration, values),
		Path:     "/",
		Domain:   c.domain,
		Expires:  expiration,
		MaxAge:   int(maxAge / time.Second),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete deletes a cookie from the response
func (c *Client) Delete(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		Domain:   c.domain,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Seal encrypts values for cookieName without writing a cookie. The result is
// accepted by Open until expiration.
func (c *Client) Seal(cookieName string, expiration time.Time, values *Values) string {
	return c.encrypt(cookieName, expiration, values)
}

// Open decrypts a value produced by Seal or Write for cookieName.
func (c *Client) Open(cookieName, value string) (*Values, error) {
	return c.decrypt(cookieName, value)
}

// encrypt binds the token to cookieName through the implicit assertion.
func (c *Client) encrypt(cookieName string, expiration time.Time, values *Values) string {
	token := values.token
	token.SetExpiration(expiration)

	return token.V4Encrypt(c.pasetoKey, []byte(cookieName))
}

func (c *Client) decrypt(cookieName, cookieValue string) (*Values, error) {
	token, err := paseto.NewParser().ParseV4Local(c.pasetoKey, cookieValue, []byte(cookieName))
	if err != nil {
		return nil, errors.Wrap(err, "paseto.ParseV4Local()")
	}

	return &Values{token: *token}, nil
}
