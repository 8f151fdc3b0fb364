package identity

import "time"

// StatusKind enumerates the effective account standings.
type StatusKind string

const (
	StatusNormal    StatusKind = "normal"
	StatusTimedOut  StatusKind = "timed_out"
	StatusSuspended StatusKind = "suspended"
)

// Status is the effective account standing derived from the persisted fields.
// Until is set only for StatusTimedOut.
type Status struct {
	Kind  StatusKind
	Until time.Time
}

// DeriveStatus computes the effective status of a principal at the given time.
//
// A timeout in the future takes precedence over the suspended marker because
// timing a user out sets both fields in storage. An expired timeout resolves
// to normal even though the suspended marker may still be set.
func DeriveStatus(p *Principal, now time.Time) Status {
	if p.TimeoutUntil != nil {
		if p.TimeoutUntil.After(now) {
			return Status{Kind: StatusTimedOut, Until: *p.TimeoutUntil}
		}
		return Status{Kind: StatusNormal}
	}
	if p.Suspended {
		return Status{Kind: StatusSuspended}
	}
	return Status{Kind: StatusNormal}
}

// IsBlocked reports whether the principal's effective status forbids login
// and session continuation at the given time.
func IsBlocked(p *Principal, now time.Time) bool {
	return DeriveStatus(p, now).Kind != StatusNormal
}
