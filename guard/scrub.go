package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/cccteam/logger"
)

const redacted = "[REDACTED]"

var (
	sensitiveKey = regexp.MustCompile(`(?i)password|token|secret|key|auth|cookie|session|ssn|social|dob|birth|medical|patient|email|phone`)

	piiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		regexp.MustCompile(`\(?\b\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:mrn|patient[_ ]?id)[:=# ]*\s*[A-Za-z0-9-]+`),
		regexp.MustCompile(`(?i)\b(?:dob|date[_ ]of[_ ]birth)[:= ]*\s*[0-9/.-]+`),
	}
)

// Report is an error report with request context. Reports built by Scrub
// carry no credential or PHI.
type Report struct {
	Guard   string            `json:"guard"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   map[string]string `json:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Error   string            `json:"error"`
}

func (rep Report) String() string {
	b, err := json.Marshal(rep)
	if err != nil {
		return rep.Error
	}

	return string(b)
}

// Reporter receives error reports for internal failures.
type Reporter func(ctx context.Context, rep Report)

// LogReporter writes reports to the request logger.
func LogReporter(ctx context.Context, rep Report) {
	logger.FromCtx(ctx).Error(rep.String())
}

// Scrub builds a Report for err with every credential, cookie and personal
// identifier removed. Header and query values under sensitive names are
// replaced outright, and their raw values are also removed from the error text.
func Scrub(r *http.Request, err error) Report {
	var secrets []string

	headers := make(map[string]string, len(r.Header))
	for k, vs := range r.Header {
		if sensitiveKey.MatchString(k) {
			headers[k] = redacted
			secrets = append(secrets, vs...)
			for _, v := range vs {
				if _, tok, ok := strings.Cut(v, " "); ok {
					secrets = append(secrets, tok)
				}
			}

			continue
		}
		headers[k] = scrubText(strings.Join(vs, ", "), nil)
	}
	for _, c := range r.Cookies() {
		secrets = append(secrets, c.Value)
	}

	var query map[string]string
	if q := r.URL.Query(); len(q) > 0 {
		query = make(map[string]string, len(q))
		for k, vs := range q {
			if sensitiveKey.MatchString(k) {
				query[k] = redacted
				secrets = append(secrets, vs...)

				continue
			}
			query[k] = scrubText(strings.Join(vs, ", "), nil)
		}
	}

	rep := Report{
		Method:  r.Method,
		Path:    scrubText(r.URL.Path, secrets),
		Query:   query,
		Headers: headers,
	}
	if err != nil {
		rep.Error = scrubText(err.Error(), secrets)
	}

	return rep
}

// scrubText removes secrets, longest first, then PII patterns.
func scrubText(s string, secrets []string) string {
	secrets = slices.Clone(secrets)
	slices.SortFunc(secrets, func(a, b string) int { return len(b) - len(a) })
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}

	for _, p := range piiPatterns {
		s = p.ReplaceAllString(s, redacted)
	}

	return s
}
