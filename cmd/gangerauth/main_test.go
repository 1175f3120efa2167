package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gangerdermatology/auth"
	"github.com/gangerdermatology/auth/config"
	"github.com/gangerdermatology/auth/guard"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestRouteCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"route", "staff", "/inventory/items"}, want: "staff /inventory/items: allowed (rule /inventory min_role=staff permission=read:inventory)\n"},
		{args: []string{"route", "staff", "/reports"}, want: "staff /reports: denied (rule /reports min_role=manager permission=read:reports)\n"},
		{args: []string{"route", "manager", "/reports/daily"}, want: "manager /reports/daily: allowed (rule /reports min_role=manager permission=read:reports)\n"},
		{args: []string{"route", "wizard", "/"}, wantErr: true},
		{args: []string{"route", "staff"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := run(t, tt.args...)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.args)

			continue
		}
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.want, got, "%v", tt.args)
	}
}

func TestStorageKeyCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{
			args: []string{"storage-key", "https://pfqtarvrmhpqqlkyrzkx.supabase.co"},
			want: "canonical: sb-pfqtarvrmhpqqlkyrzkx-auth-token\n",
		},
		{
			args: []string{"storage-key", "https://supa.gangerdermatology.com", "--project-ref", "pfqtarvrmhpqqlkyrzkx"},
			want: "canonical: sb-pfqtarvrmhpqqlkyrzkx-auth-token\nlegacy:    sb-supa-auth-token\n",
		},
		{
			args:    []string{"storage-key", "https://supa.gangerdermatology.com"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		got, err := run(t, tt.args...)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.args)

			continue
		}
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.want, got, "%v", tt.args)
	}
}

func TestRolesCmd(t *testing.T) {
	t.Parallel()

	got, err := run(t, "roles")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "ROLE"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "superadmin"))

	verbose, err := run(t, "roles", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, verbose, "read:inventory")
}

func TestGrant(t *testing.T) {
	t.Parallel()

	const userID = "8c2f3b1e-5d4a-4c6e-9f1a-2b3c4d5e6f70"

	store := profilestore.NewMemory()
	store.PutProfile(&sessioninfo.Profile{
		UserID: userID, Email: "sam@gangerdermatology.com", Role: roles.Staff, Active: true,
		Permissions: []string{"read:billing"},
	})

	var out bytes.Buffer
	err := grant(t.Context(), &out, store, userID, []string{"write:inventory", "read:inventory", "bogus", "write:inventory"})
	require.NoError(t, err)
	assert.Equal(t, "sam@gangerdermatology.com (staff): write:inventory,read:inventory\n", out.String())

	held, err := store.UserPermissions(t.Context(), userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"write:inventory", "read:inventory"}, held)

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, profilestore.ActionPermissionsAssigned, entries[0].Action)
	assert.Equal(t, userID, entries[0].UserID)

	out.Reset()
	require.NoError(t, grant(t.Context(), &out, store, userID, nil))
	assert.Equal(t, "sam@gangerdermatology.com (staff): (none)\n", out.String())

	err = grant(t.Context(), &out, store, "4f5e6d7c-8b9a-4a1b-9c2d-3e4f5a6b7c8d", []string{"read:inventory"})
	assert.Error(t, err)
}

func TestGrantCmd_requiresDatabase(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://pfqtarvrmhpqqlkyrzkx.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("APP_URL", "http://localhost:8080")
	t.Setenv("AUTH_COOKIE_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "grant", "8c2f3b1e-5d4a-4c6e-9f1a-2b3c4d5e6f70", "read:inventory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url is required")
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://pfqtarvrmhpqqlkyrzkx.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SUPABASE_JWT_SECRET", "super-secret-jwt-token-with-at-least-32-characters")
	t.Setenv("APP_URL", "http://localhost:8080")
	t.Setenv("AUTH_COOKIE_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	t.Setenv("AUTH_REQUEST_TIMEOUT", "5s")

	got, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, got, "base_url: https://pfqtarvrmhpqqlkyrzkx.supabase.co\n")
	assert.Contains(t, got, "jwt_secret: REDACTED\n")
	assert.Contains(t, got, "request_timeout: 5s\n")
	assert.NotContains(t, got, "super-secret")
	assert.NotContains(t, got, "MDEyMzQ1")
}

func TestOpenProfileStore_memory(t *testing.T) {
	t.Parallel()

	store, closeStore, err := openProfileStore(t.Context(), "")
	require.NoError(t, err)
	defer closeStore()

	_, err = store.Profile(t.Context(), "8c2f3b1e-5d4a-4c6e-9f1a-2b3c4d5e6f70")
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.BaseURL = "https://pfqtarvrmhpqqlkyrzkx.supabase.co"
	cfg.AnonKey = "anon"
	cfg.JWTSecret = "super-secret-jwt-token-with-at-least-32-characters"
	cfg.AppURL = "http://localhost:8080"
	cfg.CookieKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

	reg := prometheus.NewRegistry()
	a, err := auth.New(cfg, profilestore.NewMemory(), auth.WithMetrics(guard.NewMetrics(reg)))
	require.NoError(t, err)
	h := router(a, reg)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{method: http.MethodGet, path: "/api/me", wantStatus: http.StatusUnauthorized, wantBody: "UNAUTHORIZED"},
		{method: http.MethodGet, path: "/api/patients/42", wantStatus: http.StatusUnauthorized},
		{method: http.MethodGet, path: "/auth/session", wantStatus: http.StatusOK, wantBody: `"isAuthenticated":false`},
		{method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: `"isAuthenticated":false`},
		{method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: `ganger_auth_guard_decisions_total{code="UNAUTHORIZED",guard="authenticated"} 1`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))

		assert.Equal(t, tt.wantStatus, rec.Code, "%s %s", tt.method, tt.path)
		assert.Contains(t, rec.Body.String(), tt.wantBody, "%s %s", tt.method, tt.path)
	}
}
