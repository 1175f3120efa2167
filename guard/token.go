package guard

import (
	"net/http"
	"strings"

	"github.com/gangerdermatology/auth/autherror"
	"github.com/gangerdermatology/auth/sessionstore"
)

// TokenCookie is the cookie read for a bearer token when no Authorization
// header is sent.
const TokenCookie = "auth_token"

var _ sessionstore.Jar = requestJar{}

// requestJar reads the shared session from the request. The guard never
// writes session cookies, so Set is dropped.
type requestJar struct {
	r *http.Request
}

func (j requestJar) Get(name string) (string, bool) {
	c, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}

	return c.Value, true
}

func (requestJar) Set(*http.Cookie) {}

// token returns the access token in the request. It looks at the
// Authorization header, then TokenCookie, then the shared session.
func (g *Guard) token(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		tok = strings.TrimSpace(tok)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
			return "", autherror.Validation("Malformed Authorization header")
		}

		return tok, nil
	}

	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	if g.sessions != nil {
		if s := g.sessions.Adapter(requestJar{r: r}).Session(r.Context()); s != nil {
			return s.AccessToken, nil
		}
	}

	return "", nil
}
