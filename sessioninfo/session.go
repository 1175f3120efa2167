package sessioninfo

import (
	"context"
	"fmt"
	"net/http"
)

// ctxKey is a type for storing values in the request context
type ctxKey string

const (
	// CtxUser is the key used to store the authorized User in the context.
	CtxUser ctxKey = "user"
	// CtxProfile is the key used to store the Profile in the context.
	CtxProfile ctxKey = "profile"
)

// NewCtx returns a context carrying the authorized user and profile.
func NewCtx(ctx context.Context, user *User, profile *Profile) context.Context {
	ctx = context.WithValue(ctx, CtxUser, user)

	return context.WithValue(ctx, CtxProfile, profile)
}

// UserFromRequest returns the user from the request context.
func UserFromRequest(r *http.Request) *User {
	return UserFromCtx(r.Context())
}

// UserFromCtx returns the user from the context. It panics when called outside
// a guarded handler, where a user is always present.
func UserFromCtx(ctx context.Context) *User {
	user, ok := ctx.Value(CtxUser).(*User)
	if !ok || user == nil {
		panic(fmt.Sprintf("failed to find %s in request context", CtxUser))
	}

	return user
}

// ProfileFromRequest returns the profile from the request context.
func ProfileFromRequest(r *http.Request) (*Profile, bool) {
	return ProfileFromCtx(r.Context())
}

// ProfileFromCtx returns the profile from the context. Guards that admit users
// without a profile row leave it unset, so ok is false.
func ProfileFromCtx(ctx context.Context) (profile *Profile, ok bool) {
	profile, ok = ctx.Value(CtxProfile).(*Profile)

	return profile, ok && profile != nil
}
