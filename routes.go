package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the session endpoints, to be mounted under /auth:
//
//	GET  /login     SignIn
//	GET  /callback  Callback
//	POST /logout    SignOut
//	GET  /session   Session
//	POST /refresh   Refresh
//	PUT  /team      SetActiveTeam
//
// Every response carries an XSRF-TOKEN cookie, and the POST and PUT
// endpoints require it to be echoed in the X-XSRF-TOKEN header.
func (a *Auth) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(a.SetXSRFToken)
	r.Get("/login", a.SignIn())
	r.Get("/callback", a.Callback())
	r.Get("/session", a.Session())

	r.Group(func(r chi.Router) {
		r.Use(a.ValidateXSRFToken)
		r.Post("/logout", a.SignOut())
		r.Post("/refresh", a.Refresh())
		r.Put("/team", a.SetActiveTeam())
	})

	return r
}
