package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeAuthServer emulates the identity provider's auth API.
func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		switch r.URL.Query().Get("grant_type") {
		case "pkce":
			if body["auth_code"] != "good-code" || body["code_verifier"] != "verifier-123" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"invalid flow state"}`))

				return
			}
		case "refresh_token":
			if body["refresh_token"] == "slow" {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}

				return
			}
			if body["refresh_token"] != "refresh-1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))

				return
			}
		default:
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		_, _ = w.Write([]byte(`{
			"access_token": "access-2",
			"token_type": "bearer",
			"expires_in": 3600,
			"refresh_token": "refresh-2",
			"user": {"id": "u1", "email": "Ann@GangerDermatology.com", "user_metadata": {"full_name": "Ann Example", "avatar_url": "https://img/a.png"}}
		}`))
	})
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer access-1":
			_, _ = w.Write([]byte(`{"id": "u1", "email": "ann@gangerdermatology.com", "user_metadata": {"name": "Ann"}, "factors": [{"id": "f1", "status": "verified"}]}`))
		case "Bearer banned":
			_, _ = w.Write([]byte(`{"id": "u2", "email": "bob@gangerdermatology.com", "banned_until": "2999-01-01T00:00:00Z"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code": 401, "msg": "invalid JWT"}`))
		}
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer access-1":
			w.WriteHeader(http.StatusNoContent)
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_AuthorizeURL(t *testing.T) {
	t.Parallel()

	c := New("https://supa.gangerdermatology.com/", "anon")
	got, err := url.Parse(c.AuthorizeURL("https://inventory.gangerdermatology.com/auth/callback", "verifier-123", "gangerdermatology.com"))
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	if got.Host != "supa.gangerdermatology.com" || got.Path != "/auth/v1/authorize" {
		t.Errorf("AuthorizeURL() = %s", got)
	}
	want := map[string]string{
		"provider":              "google",
		"redirect_to":           "https://inventory.gangerdermatology.com/auth/callback",
		"code_challenge":        oauth2.S256ChallengeFromVerifier("verifier-123"),
		"code_challenge_method": "s256",
		"access_type":           "offline",
		"prompt":                "select_account",
		"hd":                    "gangerdermatology.com",
	}
	for k, v := range want {
		if g := got.Query().Get(k); g != v {
			t.Errorf("AuthorizeURL() %s = %q, want %q", k, g, v)
		}
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	t.Parallel()

	srv := fakeAuthServer(t)
	c := New(srv.URL, "anon", WithClock(func() time.Time { return fixedNow }))

	tests := []struct {
		name         string
		code         string
		verifier     string
		want         *sessioninfo.Session
		wantRejected bool
	}{
		{
			name:     "valid code",
			code:     "good-code",
			verifier: "verifier-123",
			want: &sessioninfo.Session{
				AccessToken:  "access-2",
				TokenType:    "bearer",
				ExpiresIn:    3600,
				ExpiresAt:    fixedNow.Unix() + 3600,
				RefreshToken: "refresh-2",
				User:         &sessioninfo.User{ID: "u1", Email: "ann@gangerdermatology.com", Name: "Ann Example", AvatarURL: "https://img/a.png", Active: true},
			},
		},
		{name: "wrong verifier", code: "good-code", verifier: "other", wantRejected: true},
		{name: "unknown code", code: "bad-code", verifier: "verifier-123", wantRejected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.ExchangeCode(context.Background(), tt.code, tt.verifier)
			if tt.wantRejected {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("ExchangeCode() error = %v, want ErrRejected", err)
				}

				return
			}
			if err != nil {
				t.Fatalf("ExchangeCode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExchangeCode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_Refresh(t *testing.T) {
	t.Parallel()

	srv := fakeAuthServer(t)
	c := New(srv.URL, "anon", WithTimeout(100*time.Millisecond))

	s, err := c.Refresh(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if s.AccessToken != "access-2" || s.RefreshToken != "refresh-2" {
		t.Errorf("Refresh() = %+v", s)
	}

	if _, err := c.Refresh(context.Background(), "revoked"); !errors.Is(err, ErrRejected) {
		t.Errorf("Refresh() error = %v, want ErrRejected", err)
	}
	if _, err := c.Refresh(context.Background(), ""); !errors.Is(err, ErrRejected) {
		t.Errorf("Refresh() with empty token error = %v, want ErrRejected", err)
	}

	start := time.Now()
	_, err = c.Refresh(context.Background(), "slow")
	if err == nil {
		t.Fatalf("Refresh() against a hung server succeeded")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Refresh() took %s, want it bounded by the timeout", elapsed)
	}
}

func TestClient_User(t *testing.T) {
	t.Parallel()

	srv := fakeAuthServer(t)
	c := New(srv.URL, "anon")

	tests := []struct {
		name         string
		token        string
		want         *sessioninfo.User
		wantRejected bool
	}{
		{name: "mfa user", token: "access-1", want: &sessioninfo.User{ID: "u1", Email: "ann@gangerdermatology.com", Name: "Ann", Active: true, MFAEnabled: true}},
		{name: "banned user", token: "banned", want: &sessioninfo.User{ID: "u2", Email: "bob@gangerdermatology.com", Active: false}},
		{name: "invalid token", token: "forged", wantRejected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.User(context.Background(), tt.token)
			if tt.wantRejected {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("User() error = %v, want ErrRejected", err)
				}

				return
			}
			if err != nil {
				t.Fatalf("User() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("User() mismatch (-want +got):\n%s", diff)
			}

			viaVerify, err := c.VerifyToken(context.Background(), tt.token)
			if err != nil {
				t.Fatalf("VerifyToken() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, viaVerify); diff != "" {
				t.Errorf("VerifyToken() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_SignOut(t *testing.T) {
	t.Parallel()

	srv := fakeAuthServer(t)
	c := New(srv.URL, "anon")

	if err := c.SignOut(context.Background(), "access-1"); err != nil {
		t.Errorf("SignOut() error = %v", err)
	}
	if err := c.SignOut(context.Background(), "already-gone"); err != nil {
		t.Errorf("SignOut() of unknown token error = %v", err)
	}
	if err := c.SignOut(context.Background(), "broken"); err == nil {
		t.Errorf("SignOut() on server error succeeded")
	}
}

func TestClient_VerifyToken_local(t *testing.T) {
	t.Parallel()

	const base = "https://supa.gangerdermatology.com"
	c := New("http://127.0.0.1:1", "anon", WithVerifier(NewHS256Verifier(base, "jwt-secret")))

	token := signHS256(t, "jwt-secret", accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    Issuer(base),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "Ann@gangerdermatology.com",
	})

	got, err := c.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	want := &sessioninfo.User{ID: "u1", Email: "ann@gangerdermatology.com", Active: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VerifyToken() mismatch (-want +got):\n%s", diff)
	}
}
