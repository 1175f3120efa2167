package sessionstore

import "time"

// Option configures a Store.
type Option func(*Store)

// WithStrategies sets the key strategies tried, in order, when reading. The
// first strategy names the canonical cookie.
func WithStrategies(strategies ...KeyStrategy) Option {
	return func(s *Store) {
		if len(strategies) > 0 {
			s.strategies = strategies
		}
	}
}

// WithCodec sets the codec used for stored values.
func WithCodec(codec Codec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// WithDomain sets the cookie domain, normally the shared parent domain.
func WithDomain(domain string) Option {
	return func(s *Store) {
		s.domain = domain
	}
}

// WithSecure marks cookies Secure. Production deployments set this.
func WithSecure(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithMaxAge sets the cookie lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithChunkSize overrides the chunk size.
func WithChunkSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithClock sets the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}
