package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gangerdermatology/auth/autherror"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/mock/mock_identity"
	"github.com/gangerdermatology/auth/mock/mock_profilestore"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/gangerdermatology/auth/sessionstore"
	"github.com/go-playground/errors/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	gomock "go.uber.org/mock/gomock"
)

const testKey = "sb-pfqtarvrmhpqqlkyrzkx-auth-token"

var (
	testNow   = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock     = func() time.Time { return testNow }
	staffID   = "8c2f3b1e-5d4a-4c6e-9f1a-2b3c4d5e6f70"
	managerID = "1d2e3f4a-5b6c-4d7e-8f9a-0b1c2d3e4f5a"
	retiredID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	noneID    = "0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
)

func seed() *profilestore.Memory {
	m := profilestore.NewMemory()
	m.PutProfile(&sessioninfo.Profile{UserID: staffID, Email: "sam@gangerdermatology.com", Role: roles.Staff, Active: true})
	m.PutProfile(&sessioninfo.Profile{UserID: managerID, Email: "max@gangerdermatology.com", Role: roles.Manager, Active: true, Locations: []string{"Ann Arbor"}})
	m.PutProfile(&sessioninfo.Profile{UserID: retiredID, Email: "rey@gangerdermatology.com", Role: roles.Manager, Active: false})

	return m
}

func identityUser(id string, active bool) *sessioninfo.User {
	return &sessioninfo.User{ID: id, Email: id + "@gangerdermatology.com", Active: active}
}

// expectToken makes the mock provider accept tok as the user id.
func expectToken(idp *mock_identity.MockProvider, tok, id string) {
	idp.EXPECT().VerifyToken(gomock.Any(), tok).Return(identityUser(id, true), nil).AnyTimes()
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) autherror.Body {
	t.Helper()

	var body autherror.Body
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("json.Decode() error = %v", err)
	}

	return body
}

func TestGuard_Middleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        Requirements
		header     map[string]string
		prepare    func(idp *mock_identity.MockProvider)
		wantCode   autherror.Code
		wantStatus int
		wantRole   roles.Role
	}{
		{
			name:       "no token",
			req:        Staff(),
			wantCode:   autherror.CodeUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization header",
			req:        Staff(),
			header:     map[string]string{"Authorization": "Basic c2FtOnB3"},
			wantCode:   autherror.CodeValidation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "rejected token",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer expired"},
			prepare: func(idp *mock_identity.MockProvider) {
				idp.EXPECT().VerifyToken(gomock.Any(), "expired").Return(nil, errors.Wrap(identity.ErrRejected, "token is expired"))
			},
			wantCode:   autherror.CodeInvalidToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "identity provider outage",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				idp.EXPECT().VerifyToken(gomock.Any(), "tok").Return(nil, errors.New("connection refused"))
			},
			wantCode:   autherror.CodeUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "identity provider times out",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				idp.EXPECT().VerifyToken(gomock.Any(), "tok").DoAndReturn(func(ctx context.Context, _ string) (*sessioninfo.User, error) {
					<-ctx.Done()

					return nil, ctx.Err()
				})
			},
			wantCode:   autherror.CodeUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "inactive identity",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				idp.EXPECT().VerifyToken(gomock.Any(), "tok").Return(identityUser(staffID, false), nil)
			},
			wantCode:   autherror.CodeUserInactive,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "inactive profile",
			req:    Authenticated(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", retiredID)
			},
			wantCode:   autherror.CodeUserInactive,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "staff below manager",
			req:    Manager(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantCode:   autherror.CodeInsufficientPermissions,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "manager on manager route",
			req:    Manager(),
			header: map[string]string{"Authorization": "bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", managerID)
			},
			wantStatus: http.StatusOK,
			wantRole:   roles.Manager,
		},
		{
			name:   "manager on staff route",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", managerID)
			},
			wantStatus: http.StatusOK,
			wantRole:   roles.Manager,
		},
		{
			name:   "manager below admin",
			req:    Admin(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", managerID)
			},
			wantCode:   autherror.CodeInsufficientPermissions,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "no profile is denied a role",
			req:    Staff(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", noneID)
			},
			wantCode:   autherror.CodeInsufficientPermissions,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "no profile passes authentication only",
			req:    Authenticated(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", noneID)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "missing permission",
			req:    Staff().WithPermissions("read:patients"),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantCode:   autherror.CodeInsufficientPermissions,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "held permission",
			req:    Staff().WithPermissions("read:inventory", "write:inventory"),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantStatus: http.StatusOK,
			wantRole:   roles.Staff,
		},
		{
			name:   "role not listed",
			req:    Authenticated().WithRoles(roles.Manager, roles.TechnicalAdmin),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantCode:   autherror.CodeInsufficientPermissions,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "hipaa without access reason",
			req:    HIPAA(),
			header: map[string]string{"Authorization": "Bearer tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantCode:   autherror.CodeHIPAAComplianceRequired,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "hipaa with access reason",
			req:    HIPAA(),
			header: map[string]string{"Authorization": "Bearer tok", HeaderAccessReason: "treatment"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantStatus: http.StatusOK,
			wantRole:   roles.Staff,
		},
		{
			name:   "token cookie",
			req:    Staff(),
			header: map[string]string{"Cookie": TokenCookie + "=tok"},
			prepare: func(idp *mock_identity.MockProvider) {
				expectToken(idp, "tok", staffID)
			},
			wantStatus: http.StatusOK,
			wantRole:   roles.Staff,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idp := mock_identity.NewMockProvider(gomock.NewController(t))
			if tt.prepare != nil {
				tt.prepare(idp)
			}
			g := New(idp, seed(), tt.req, WithClock(clock), WithTimeout(50*time.Millisecond))

			var gotRole roles.Role
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotRole = sessioninfo.UserFromRequest(r).Role
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/inventory", http.NoBody)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			g.Middleware(next).ServeHTTP(rec, r)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode == "" {
				if !called {
					t.Fatalf("next handler was not called")
				}
				if gotRole != tt.wantRole {
					t.Errorf("user role = %q, want %q", gotRole, tt.wantRole)
				}

				return
			}

			if called {
				t.Errorf("next handler was called for a rejected request")
			}
			body := errorBody(t, rec)
			if body.Success {
				t.Errorf("success = true, want false")
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
			if body.Error.RequestID == "" {
				t.Errorf("request_id is empty")
			}
		})
	}
}

func TestGuard_unrecognizedProfileRole(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	idp := mock_identity.NewMockProvider(ctrl)
	expectToken(idp, "tok", staffID)
	store := mock_profilestore.NewMockStore(ctrl)
	store.EXPECT().Profile(gomock.Any(), staffID).Return(nil, errors.Wrap(&profilestore.InvalidValueError{
		UserID: staffID, Column: "profiles.role", Value: "admin", Err: errors.New(`unknown role "admin"`),
	}, "db.Profile()"))
	store.EXPECT().RecordAudit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	r := httptest.NewRequest(http.MethodGet, "/api/inventory", http.NoBody)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	New(idp, store, Authenticated(), WithClock(clock)).Middleware(http.NotFoundHandler()).ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if got := errorBody(t, rec).Error.Code; got != autherror.CodeInsufficientPermissions {
		t.Errorf("code = %q, want %q", got, autherror.CodeInsufficientPermissions)
	}
}

func TestGuard_Evaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token     string
		verifyErr error
		id        string
		want      State
	}{
		{name: "no token", want: Rejected},
		{name: "rejected token", token: "bad", verifyErr: identity.ErrRejected, want: Rejected},
		{name: "staff on manager guard", token: "tok", id: staffID, want: Rejected},
		{name: "manager", token: "tok", id: managerID, want: Authorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idp := mock_identity.NewMockProvider(gomock.NewController(t))
			if tt.token != "" {
				if tt.verifyErr != nil {
					idp.EXPECT().VerifyToken(gomock.Any(), tt.token).Return(nil, tt.verifyErr)
				} else {
					expectToken(idp, tt.token, tt.id)
				}
			}

			r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}

			d := New(idp, seed(), Manager()).Evaluate(r)
			if d.State != tt.want {
				t.Errorf("State = %s, want %s", d.State, tt.want)
			}
			if d.State == Rejected && d.Err == nil {
				t.Errorf("rejected decision has no error")
			}
			if d.State == Authorized && d.Code() != "" {
				t.Errorf("Code() = %q, want empty", d.Code())
			}
		})
	}
}

func TestGuard_sharedSession(t *testing.T) {
	t.Parallel()

	store := sessionstore.New(testKey, sessionstore.WithClock(clock))

	w := httptest.NewRecorder()
	store.Request(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody)).SetSession(t.Context(), &sessioninfo.Session{
		AccessToken:  "shared",
		ExpiresAt:    testNow.Add(time.Hour).Unix(),
		RefreshToken: "refresh",
		User:         identityUser(staffID, true),
	})

	r := httptest.NewRequest(http.MethodGet, "/api/inventory", http.NoBody)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	idp := mock_identity.NewMockProvider(gomock.NewController(t))
	expectToken(idp, "shared", staffID)

	g := New(idp, seed(), Staff(), WithSessions(store), WithClock(clock))
	rec := httptest.NewRecorder()
	g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Result().Cookies(); len(got) != 0 {
		t.Errorf("guard wrote %d cookies, want none", len(got))
	}
}

func TestGuard_RateLimited(t *testing.T) {
	t.Parallel()

	now := testNow
	idp := mock_identity.NewMockProvider(gomock.NewController(t))
	expectToken(idp, "staff", staffID)
	expectToken(idp, "manager", managerID)

	g := New(idp, seed(), RateLimited(time.Minute, 2), WithClock(func() time.Time { return now }))
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(tok string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/call-center", http.NoBody)
		r.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		return rec
	}

	for i := range 2 {
		if rec := call("staff"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	rec := call("staff")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q, want %q", got, "30")
	}
	if body := errorBody(t, rec); body.Error.RetryAfter != 30 {
		t.Errorf("retry_after = %d, want 30", body.Error.RetryAfter)
	}

	if rec := call("manager"); rec.Code != http.StatusOK {
		t.Errorf("other caller status = %d, want %d", rec.Code, http.StatusOK)
	}

	now = now.Add(30 * time.Second)
	if rec := call("staff"); rec.Code != http.StatusOK {
		t.Errorf("status after waiting = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGuard_audit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header map[string]string
		want   []profilestore.AuditEntry
	}{
		{
			name:   "phi access",
			header: map[string]string{HeaderAccessReason: "treatment"},
			want: []profilestore.AuditEntry{{
				UserID:    staffID,
				Action:    profilestore.ActionPHIAccess,
				Resource:  "GET /api/patients/42",
				Outcome:   profilestore.OutcomeAllowed,
				Reason:    "treatment",
				IPAddress: "10.1.2.3",
				At:        testNow,
			}},
		},
		{
			name: "break glass",
			header: map[string]string{
				HeaderAccessReason:     "emergency",
				HeaderBreakGlass:       "true",
				HeaderBreakGlassReason: "patient unresponsive",
			},
			want: []profilestore.AuditEntry{{
				UserID:    staffID,
				Action:    profilestore.ActionBreakGlass,
				Resource:  "GET /api/patients/42",
				Outcome:   profilestore.OutcomeAllowed,
				Reason:    "emergency",
				IPAddress: "10.1.2.3",
				Details:   map[string]string{"break_glass_reason": "patient unresponsive"},
				At:        testNow,
			}},
		},
		{
			name: "missing reason",
			want: []profilestore.AuditEntry{{
				UserID:    staffID,
				Action:    profilestore.ActionAccessDenied,
				Resource:  "GET /api/patients/42",
				Outcome:   profilestore.OutcomeDenied,
				Reason:    string(autherror.CodeHIPAAComplianceRequired),
				IPAddress: "10.1.2.3",
				At:        testNow,
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idp := mock_identity.NewMockProvider(gomock.NewController(t))
			expectToken(idp, "tok", staffID)
			profiles := seed()

			r := httptest.NewRequest(http.MethodGet, "/api/patients/42", http.NoBody)
			r.RemoteAddr = "10.1.2.3:5555"
			r.Header.Set("Authorization", "Bearer tok")
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}

			New(idp, profiles, HIPAA(), WithClock(clock)).Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), r)

			got := profiles.AuditEntries()
			for i := range got {
				got[i].RequestID = ""
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AuditEntries() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGuard_Handle(t *testing.T) {
	t.Parallel()

	idp := mock_identity.NewMockProvider(gomock.NewController(t))
	expectToken(idp, "tok", staffID)

	g := New(idp, seed(), Staff())
	h := g.Handle(func(r *http.Request) (*Response, error) {
		if r.URL.Query().Get("fail") != "" {
			return nil, autherror.Validation("sku is required")
		}

		return JSON(http.StatusCreated, map[string]string{"user": sessioninfo.UserFromRequest(r).ID}), nil
	})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "created", target: "/api/items", wantStatus: http.StatusCreated, wantBody: `{"user":"` + staffID + `"}`},
		{name: "handler error", target: "/api/items?fail=1", wantStatus: http.StatusBadRequest, wantBody: `"code":"VALIDATION_ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, tt.target, http.NoBody)
			r.Header.Set("Authorization", "Bearer tok")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGuard_hipaaReportsAreScrubbed(t *testing.T) {
	t.Parallel()

	const (
		tok    = "eyJhbGciOiJIUzI1NiJ9.c2VjcmV0.c2ln"
		cookie = "sess-7f3a9c"
		apiKey = "k-99812"
	)

	idp := mock_identity.NewMockProvider(gomock.NewController(t))
	expectToken(idp, tok, staffID)

	var reports []Report
	g := New(idp, seed(), HIPAA(), WithProduction(false), WithReporter(func(_ context.Context, rep Report) {
		reports = append(reports, rep)
	}))
	h := g.Handle(func(_ *http.Request) (*Response, error) {
		return nil, errors.Newf("chart lookup with %s and %s failed for patient 123-45-6789 (jane@example.com)", tok, cookie)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/patients?patient_id=77&page=2", http.NoBody)
	r.Header.Set("Authorization", "Bearer "+tok)
	r.Header.Set("X-Api-Key", apiKey)
	r.Header.Set(HeaderAccessReason, "treatment")
	r.AddCookie(&http.Cookie{Name: "clinic_session", Value: cookie})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}

	payloads := map[string]string{
		"report":   reports[0].String(),
		"response": rec.Body.String(),
	}
	for where, payload := range payloads {
		for _, secret := range []string{tok, cookie, apiKey, "123-45-6789", "jane@example.com"} {
			if strings.Contains(payload, secret) {
				t.Errorf("%s contains %q: %s", where, secret, payload)
			}
		}
	}
	if got := reports[0].Query["patient_id"]; got != redacted {
		t.Errorf("query patient_id = %q, want %q", got, redacted)
	}
	if got := reports[0].Guard; got != "hipaa" {
		t.Errorf("Guard = %q, want %q", got, "hipaa")
	}
}

func TestGuard_metrics(t *testing.T) {
	t.Parallel()

	idp := mock_identity.NewMockProvider(gomock.NewController(t))
	expectToken(idp, "staff", staffID)
	expectToken(idp, "manager", managerID)

	m := NewMetrics(prometheus.NewRegistry())
	h := New(idp, seed(), Manager(), WithMetrics(m)).Middleware(http.NotFoundHandler())

	for _, tok := range []string{"staff", "manager", "manager", ""} {
		r := httptest.NewRequest(http.MethodGet, "/api/reports", http.NoBody)
		if tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	tests := []struct {
		code string
		want float64
	}{
		{code: "AUTHORIZED", want: 2},
		{code: string(autherror.CodeInsufficientPermissions), want: 1},
		{code: string(autherror.CodeUnauthorized), want: 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.decisions.WithLabelValues("manager", tt.code)); got != tt.want {
			t.Errorf("decisions{code=%q} = %v, want %v", tt.code, got, tt.want)
		}
	}
}
