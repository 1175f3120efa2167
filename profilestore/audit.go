package profilestore

import "time"

// Action names an audited event.
type Action string

const (
	ActionSignIn       Action = "sign_in"
	ActionSignOut      Action = "sign_out"
	ActionAccessDenied Action = "access_denied"
	ActionPHIAccess    Action = "phi_access"
	ActionBreakGlass   Action = "break_glass"

	ActionPermissionsAssigned Action = "permissions_assigned"
)

// Outcome is the result of an audited event.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)

// AuditEntry is one audit log record. UserID is empty for anonymous requests.
type AuditEntry struct {
	UserID    string
	Action    Action
	Resource  string
	Outcome   Outcome
	Reason    string
	RequestID string
	IPAddress string
	UserAgent string
	Details   map[string]string
	At        time.Time
}
