package sessionstore

import (
	"net/http"
	"sync"
)

// Jar is the cookie surface of the host runtime.
type Jar interface {
	// Get returns the value of the named cookie.
	Get(name string) (string, bool)
	// Set writes the cookie. A negative MaxAge deletes it.
	Set(c *http.Cookie)
}

var (
	_ Jar = &HTTPJar{}
	_ Jar = &MemoryJar{}
)

// HTTPJar reads cookies from a request and writes them to its response.
// Writes made during the request are visible to later reads.
type HTTPJar struct {
	r *http.Request
	w http.ResponseWriter

	mu      sync.Mutex
	pending map[string]*http.Cookie
}

// NewHTTPJar returns a Jar for one request.
func NewHTTPJar(w http.ResponseWriter, r *http.Request) *HTTPJar {
	return &HTTPJar{
		r:       r,
		w:       w,
		pending: make(map[string]*http.Cookie),
	}
}

// Get implements Jar.
func (j *HTTPJar) Get(name string) (string, bool) {
	j.mu.Lock()
	c, ok := j.pending[name]
	j.mu.Unlock()
	if ok {
		if c.MaxAge < 0 {
			return "", false
		}

		return c.Value, true
	}

	rc, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}

	return rc.Value, true
}

// Set implements Jar.
func (j *HTTPJar) Set(c *http.Cookie) {
	j.mu.Lock()
	j.pending[c.Name] = c
	j.mu.Unlock()

	if j.w != nil {
		http.SetCookie(j.w, c)
	}
}

// MemoryJar keeps cookies in memory. It backs server-side callers that have
// no browser, and tests.
type MemoryJar struct {
	mu      sync.RWMutex
	cookies map[string]http.Cookie
}

// NewMemoryJar returns an empty MemoryJar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{cookies: make(map[string]http.Cookie)}
}

// Get implements Jar.
func (j *MemoryJar) Get(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	c, ok := j.cookies[name]

	return c.Value, ok
}

// Set implements Jar.
func (j *MemoryJar) Set(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)

		return
	}
	j.cookies[c.Name] = *c
}

// Cookie returns the full cookie as last written, including its attributes.
func (j *MemoryJar) Cookie(name string) (http.Cookie, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	c, ok := j.cookies[name]

	return c, ok
}
