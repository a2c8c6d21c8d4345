package discovery

// Status is the availability verdict for one provider entry.
type Status string

const (
	// StatusUnverified means no probe or real call has happened yet.
	StatusUnverified Status = "UNVERIFIED"

	// StatusAssumed means the credential is present and syntactically
	// valid but has not been proven by a real call.
	StatusAssumed Status = "ASSUMED"

	// StatusAvailable means a probe or real call succeeded.
	StatusAvailable Status = "AVAILABLE"

	// StatusRateLimited means the backend reported quota exhaustion.
	StatusRateLimited Status = "RATE_LIMITED"

	// StatusError means a probe or call failed for a non-quota,
	// non-credential reason.
	StatusError Status = "ERROR"

	// StatusUnavailable means the credential was rejected.
	StatusUnavailable Status = "UNAVAILABLE"
)

// Usable reports whether entries with this status participate in
// auto-selection and fallback.
func (s Status) Usable() bool {
	return s == StatusAvailable || s == StatusAssumed
}

// rank orders statuses for snapshot sorting. Lower sorts first.
// UNVERIFIED ranks with ERROR: nothing is known about the entry, so it
// must not outrank entries with evidence of working.
func (s Status) rank() int {
	switch s {
	case StatusAvailable, StatusAssumed:
		return 0
	case StatusRateLimited:
		return 1
	case StatusError, StatusUnverified:
		return 2
	default:
		return 3
	}
}
