package identity

import (
	"strings"
	"time"

	"github.com/gangerdermatology/auth/sessioninfo"
)

// tokenResponse is the token endpoint body.
type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

// userResponse is the user endpoint body.
type userResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	BannedUntil  string           `json:"banned_until"`
	UserMetadata map[string]any   `json:"user_metadata"`
	Factors      []factorResponse `json:"factors"`
}

type factorResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// errorResponse covers both error shapes the auth server returns.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"msg"`
	Code             any    `json:"code"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}

	return "unknown error"
}

func (u *userResponse) user(now time.Time) *sessioninfo.User {
	if u == nil {
		return nil
	}

	user := &sessioninfo.User{
		ID:        u.ID,
		Email:     strings.ToLower(u.Email),
		Name:      metadataString(u.UserMetadata, "full_name", "name"),
		AvatarURL: metadataString(u.UserMetadata, "avatar_url", "picture"),
		Active:    true,
	}
	if u.BannedUntil != "" {
		if until, err := time.Parse(time.RFC3339, u.BannedUntil); err != nil || until.After(now) {
			user.Active = false
		}
	}
	for _, f := range u.Factors {
		if f.Status == "verified" {
			user.MFAEnabled = true
		}
	}

	return user
}

func (t *tokenResponse) session(now time.Time) *sessioninfo.Session {
	expiresAt := t.ExpiresAt
	if expiresAt == 0 && t.ExpiresIn > 0 {
		expiresAt = now.Unix() + t.ExpiresIn
	}

	return &sessioninfo.Session{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		ExpiresAt:    expiresAt,
		RefreshToken: t.RefreshToken,
		User:         t.User.user(now),
	}
}

func metadataString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}

	return ""
}
