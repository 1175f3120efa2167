package sessionstore

import (
	"net/url"
	"strings"

	"github.com/go-playground/errors/v5"
)

const (
	keyPrefix = "sb-"
	keySuffix = "-auth-token"

	hostedSuffix = ".supabase.co"
)

// KeyStrategy maps a logical storage key to the cookie name it lives under.
type KeyStrategy interface {
	Name(key string) string
}

// CanonicalKey stores a value under the key it was written with.
type CanonicalKey struct{}

// Name implements KeyStrategy.
func (CanonicalKey) Name(key string) string {
	return key
}

// LegacyKey stores the value of key From under the cookie name Key, the
// layout used before storage keys were derived from the project reference.
// Other keys have no legacy name.
type LegacyKey struct {
	From string
	Key  string
}

// Name implements KeyStrategy.
func (l LegacyKey) Name(key string) string {
	if key != l.From {
		return ""
	}

	return l.Key
}

// StorageKey derives the canonical storage key for an identity backend. An
// explicit project reference always wins so that the hosted hostname and a
// custom domain resolve to the same key.
func StorageKey(baseURL, projectRef string) (string, error) {
	if ref := strings.ToLower(strings.TrimSpace(projectRef)); ref != "" {
		return keyPrefix + ref + keySuffix, nil
	}

	host, err := hostname(baseURL)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(host, hostedSuffix) {
		return "", errors.Newf("project reference is required for custom domain %q", host)
	}

	return keyPrefix + firstLabel(host) + keySuffix, nil
}

// LegacyStorageKey returns the key older deployments derived from the first
// label of the backend hostname.
func LegacyStorageKey(baseURL string) (string, error) {
	host, err := hostname(baseURL)
	if err != nil {
		return "", err
	}

	return keyPrefix + firstLabel(host) + keySuffix, nil
}

// Strategies returns the fallback order used to read a session: the
// canonical key first, then the legacy key when it differs.
func Strategies(baseURL, projectRef string) (canonical string, strategies []KeyStrategy, err error) {
	canonical, err = StorageKey(baseURL, projectRef)
	if err != nil {
		return "", nil, err
	}

	strategies = []KeyStrategy{CanonicalKey{}}
	if legacy, err := LegacyStorageKey(baseURL); err == nil && legacy != canonical {
		strategies = append(strategies, LegacyKey{From: canonical, Key: legacy})
	}

	return canonical, strategies, nil
}

func hostname(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", errors.Wrap(err, "url.Parse()")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.Newf("base url %q has no host", baseURL)
	}

	return host, nil
}

func firstLabel(host string) string {
	label, _, _ := strings.Cut(host, ".")

	return label
}
