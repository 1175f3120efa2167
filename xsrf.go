package auth

import (
	"net/http"
	"slices"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/cookie"
)

const (
	xsrfCookieName = "XSRF-TOKEN"
	xsrfHeaderName = "X-XSRF-TOKEN"

	xsrfCookieLife = time.Hour

	// rewrite xsrf cookie token if it expires within duration
	xsrfReWriteWindow = 30 * time.Minute
)

// safeMethods are Idempotent methods as defined by RFC7231 section 4.2.2.
var safeMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace}

// SetXSRFToken issues the XSRF-TOKEN cookie, bound to the signed in user,
// and reissues it when it nears expiry or the user changes. An unsafe
// request that arrives without a usable token is redirected to itself so it
// can be retried with the new one.
func (a *Auth) SetXSRFToken(next http.Handler) http.Handler {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		if a.setXSRFTokenCookie(w, r) && !slices.Contains(safeMethods, r.Method) {
			http.Redirect(w, r, r.RequestURI, http.StatusTemporaryRedirect)

			return nil
		}

		next.ServeHTTP(w, r)

		return nil
	})
}

// ValidateXSRFToken rejects unsafe requests whose X-XSRF-TOKEN header does
// not echo a current XSRF-TOKEN cookie issued to the same user.
func (a *Auth) ValidateXSRFToken(next http.Handler) http.Handler {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		if !slices.Contains(safeMethods, r.Method) && !a.hasValidXSRFToken(r) {
			return httpio.NewEncoder(w).ClientMessage(r.Context(), httpio.NewForbiddenMessage("invalid XSRF token"))
		}

		next.ServeHTTP(w, r)

		return nil
	})
}

// sessionSubject returns the user ID of the stored session, or "" when
// signed out.
func (a *Auth) sessionSubject(r *http.Request) string {
	s := a.sessions.Request(nil, r).Session(r.Context())
	if s == nil || s.User == nil {
		return ""
	}

	return s.User.ID
}

// setXSRFTokenCookie sets the cookie if it does not exist and updates the cookie when it is close to expiration.
func (a *Auth) setXSRFTokenCookie(w http.ResponseWriter, r *http.Request) (set bool) {
	subject := a.sessionSubject(r)
	if token, found := a.readXSRFToken(r, xsrfCookie(r)); found {
		if time.Now().Before(token.expires.Add(-xsrfReWriteWindow)) && token.subject == subject {
			return false
		}
	}

	expires := time.Now().Add(xsrfCookieLife)
	values := cookie.NewValues().
		SetString(cookie.Subject, subject).
		SetTime(cookie.Expires, expires)

	http.SetCookie(w, &http.Cookie{
		Name:     xsrfCookieName,
		Value:    a.cookies.Seal(xsrfCookieName, expires, values),
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		Expires:  expires,
		MaxAge:   int(xsrfCookieLife / time.Second),
		Secure:   a.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})

	return true
}

func (a *Auth) hasValidXSRFToken(r *http.Request) bool {
	cookieToken, found := a.readXSRFToken(r, xsrfCookie(r))
	if !found {
		return false
	}
	if time.Now().After(cookieToken.expires) {
		return false
	}
	if a.sessionSubject(r) != cookieToken.subject {
		return false
	}
	headerToken, found := a.readXSRFToken(r, r.Header.Get(xsrfHeaderName))
	if !found {
		return false
	}

	return headerToken.subject == cookieToken.subject
}

type xsrfToken struct {
	subject string
	expires time.Time
}

func xsrfCookie(r *http.Request) string {
	c, err := r.Cookie(xsrfCookieName)
	if err != nil {
		return ""
	}

	return c.Value
}

func (a *Auth) readXSRFToken(r *http.Request, sealed string) (xsrfToken, bool) {
	if sealed == "" {
		return xsrfToken{}, false
	}

	values, err := a.cookies.Open(xsrfCookieName, sealed)
	if err != nil {
		logger.Req(r).Infof("rejected XSRF token: %v", err)

		return xsrfToken{}, false
	}

	subject, err := values.GetString(cookie.Subject)
	if err != nil {
		logger.Req(r).Error(err)

		return xsrfToken{}, false
	}
	expires, err := values.GetTime(cookie.Expires)
	if err != nil {
		logger.Req(r).Error(err)

		return xsrfToken{}, false
	}

	return xsrfToken{subject: subject, expires: expires}, true
}
