package guard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/errors/v5"
	"github.com/google/go-cmp/cmp"
)

func TestScrubText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		secrets []string
		want    string
	}{
		{name: "ssn", in: "ssn 123-45-6789 on file", want: "ssn [REDACTED] on file"},
		{name: "email", in: "sent to jane.doe@example.com", want: "sent to [REDACTED]"},
		{name: "phone", in: "call (734) 555-0100", want: "call [REDACTED]"},
		{name: "mrn", in: "chart MRN: A-2231 missing", want: "chart [REDACTED] missing"},
		{name: "patient id", in: "patient_id=88123 locked", want: "[REDACTED] locked"},
		{name: "secret", in: "token abc.def rejected", secrets: []string{"abc.def"}, want: "token [REDACTED] rejected"},
		{name: "longest secret first", in: "Bearer abc", secrets: []string{"abc", "Bearer abc"}, want: "[REDACTED]"},
		{name: "empty secret ignored", in: "nothing here", secrets: []string{""}, want: "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := scrubText(tt.in, tt.secrets); got != tt.want {
				t.Errorf("scrubText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrub(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/visits?access_token=t0k&view=summary", http.NoBody)
	r.Header.Set("Authorization", "Bearer t0k")
	r.Header.Set("X-Request-Source", "kiosk")
	r.Header.Set("X-Patient-Email", "pat@example.com")

	got := Scrub(r, errors.New("visit save failed"))
	got.Error = strings.TrimSpace(got.Error)

	want := Report{
		Method: http.MethodPost,
		Path:   "/api/visits",
		Query: map[string]string{
			"access_token": redacted,
			"view":         "summary",
		},
		Headers: map[string]string{
			"Authorization":    redacted,
			"X-Request-Source": "kiosk",
			"X-Patient-Email":  redacted,
		},
	}
	if diff := cmp.Diff(want, got, cmpIgnoreError); diff != "" {
		t.Errorf("Scrub() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got.Error, "visit save failed") {
		t.Errorf("Error = %q, want it to keep the message", got.Error)
	}
}

var cmpIgnoreError = cmp.FilterPath(func(p cmp.Path) bool {
	return p.String() == "Error"
}, cmp.Ignore())
