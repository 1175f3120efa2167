package sessionstore

import (
	"context"

	"github.com/gangerdermatology/auth/sessioninfo"
)

// Storage is the item interface the identity client persists through, plus
// typed access to the session stored under the canonical key.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool)
	SetItem(ctx context.Context, key, value string)
	RemoveItem(ctx context.Context, key string)

	Session(ctx context.Context) *sessioninfo.Session
	SetSession(ctx context.Context, s *sessioninfo.Session)
	ClearSession(ctx context.Context)
}
