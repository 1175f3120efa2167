// Package sessionstore persists the shared session in cookies scoped to the
// parent domain so one sign-in is visible to every application subdomain.
package sessionstore

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
)

const (
	// DefaultMaxAge is the lifetime of a session cookie.
	DefaultMaxAge = 7 * 24 * time.Hour

	// ChunkSize is the largest value written to a single cookie. Longer
	// values are split across <name>.0, <name>.1, ...
	ChunkSize = 3180

	// maxChunks bounds chunk discovery when reading.
	maxChunks = 32
)

// Store holds the cookie policy shared by every request. Use Adapter or
// Request to obtain a per-jar Adapter.
type Store struct {
	key        string
	strategies []KeyStrategy
	codec      Codec
	domain     string
	secure     bool
	maxAge     time.Duration
	chunkSize  int
	now        func() time.Time
}

// New returns a Store that keeps the session under key. Without options the
// store uses the canonical key only and the base64 codec.
func New(key string, options ...Option) *Store {
	s := &Store{
		key:        key,
		strategies: []KeyStrategy{CanonicalKey{}},
		codec:      Base64Codec{},
		maxAge:     DefaultMaxAge,
		chunkSize:  ChunkSize,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	return s
}

// Key returns the canonical storage key.
func (s *Store) Key() string {
	return s.key
}

// Adapter returns an Adapter over jar.
func (s *Store) Adapter(jar Jar) *Adapter {
	return &Adapter{store: s, jar: jar}
}

// Request returns an Adapter reading from r and writing to w.
func (s *Store) Request(w http.ResponseWriter, r *http.Request) *Adapter {
	return s.Adapter(NewHTTPJar(w, r))
}

var _ Storage = &Adapter{}

// Adapter reads and writes storage items in one cookie jar. Failures never
// surface to callers: they are logged and the item reads as absent.
type Adapter struct {
	store *Store
	jar   Jar
}

// GetItem returns the stored value for key, trying each key strategy in
// order. A stored session that is expired and cannot be refreshed is removed
// and reported as absent.
func (a *Adapter) GetItem(ctx context.Context, key string) (string, bool) {
	for _, strategy := range a.store.strategies {
		name := strategy.Name(key)
		if name == "" {
			continue
		}

		stored, ok := a.read(name)
		if !ok {
			continue
		}

		value, err := a.store.codec.Decode(name, stored)
		if err != nil {
			logger.FromCtx(ctx).Error(errors.Wrapf(err, "sessionstore: decode %s", name))

			continue
		}

		if dead(value, a.store.now()) {
			a.RemoveItem(ctx, key)

			return "", false
		}

		return value, true
	}

	return "", false
}

// SetItem writes value under the canonical name and every legacy name.
func (a *Adapter) SetItem(ctx context.Context, key, value string) {
	for _, name := range a.names(key) {
		encoded, err := a.store.codec.Encode(name, value)
		if err != nil {
			logger.FromCtx(ctx).Error(errors.Wrapf(err, "sessionstore: encode %s", name))

			continue
		}
		a.write(name, encoded)
	}
}

// RemoveItem deletes the value under every name it may be stored under.
func (a *Adapter) RemoveItem(_ context.Context, key string) {
	for _, name := range a.names(key) {
		a.clear(name)
	}
}

// Session returns the stored session, or nil when there is no usable one.
func (a *Adapter) Session(ctx context.Context) *sessioninfo.Session {
	value, ok := a.GetItem(ctx, a.store.key)
	if !ok {
		return nil
	}

	s := &sessioninfo.Session{}
	if err := json.Unmarshal([]byte(value), s); err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "sessionstore: json.Unmarshal()"))

		return nil
	}

	return s
}

// SetSession stores s under the canonical key.
func (a *Adapter) SetSession(ctx context.Context, s *sessioninfo.Session) {
	b, err := json.Marshal(s)
	if err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "sessionstore: json.Marshal()"))

		return
	}

	a.SetItem(ctx, a.store.key, string(b))
}

// ClearSession removes the stored session.
func (a *Adapter) ClearSession(ctx context.Context) {
	a.RemoveItem(ctx, a.store.key)
}

// dead reports whether value is a stored session that can no longer be used.
// Values that are not sessions pass through.
func dead(value string, now time.Time) bool {
	var s sessioninfo.Session
	if err := json.Unmarshal([]byte(value), &s); err != nil || s.AccessToken == "" {
		return false
	}

	return !s.Usable(now)
}

func (a *Adapter) names(key string) []string {
	names := make([]string, 0, len(a.store.strategies))
	for _, strategy := range a.store.strategies {
		name := strategy.Name(key)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}

	return names
}

func (a *Adapter) read(name string) (string, bool) {
	if v, ok := a.jar.Get(name); ok {
		return v, true
	}

	var b strings.Builder
	for i := range maxChunks {
		v, ok := a.jar.Get(chunkName(name, i))
		if !ok {
			break
		}
		b.WriteString(v)
	}
	if b.Len() == 0 {
		return "", false
	}

	return b.String(), true
}

func (a *Adapter) write(name, value string) {
	chunks := split(value, a.store.chunkSize)
	if len(chunks) == 1 {
		a.jar.Set(a.cookie(name, value))
		a.clearChunks(name, 0)

		return
	}

	for i, chunk := range chunks {
		a.jar.Set(a.cookie(chunkName(name, i), chunk))
	}
	a.clearChunks(name, len(chunks))
	if _, ok := a.jar.Get(name); ok {
		a.jar.Set(a.expired(name))
	}
}

func (a *Adapter) clear(name string) {
	if _, ok := a.jar.Get(name); ok {
		a.jar.Set(a.expired(name))
	}
	a.clearChunks(name, 0)
}

// clearChunks deletes chunks of name starting at index from.
func (a *Adapter) clearChunks(name string, from int) {
	for i := from; i < maxChunks; i++ {
		chunk := chunkName(name, i)
		if _, ok := a.jar.Get(chunk); !ok {
			return
		}
		a.jar.Set(a.expired(chunk))
	}
}

func (a *Adapter) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   a.store.domain,
		MaxAge:   int(a.store.maxAge / time.Second),
		Secure:   a.store.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *Adapter) expired(name string) *http.Cookie {
	c := a.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)

	return c
}

func chunkName(name string, i int) string {
	return name + "." + strconv.Itoa(i)
}

func split(value string, size int) []string {
	if size <= 0 || len(value) <= size {
		return []string{value}
	}

	chunks := make([]string, 0, len(value)/size+1)
	for len(value) > size {
		chunks = append(chunks, value[:size])
		value = value[size:]
	}

	return append(chunks, value)
}

