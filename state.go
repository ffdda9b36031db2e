package breaker

// State is one of the six states a breaker can occupy.
type State int

const (
	// StateClosed lets every call through and evaluates the tripper after
	// each recorded outcome.
	StateClosed State = iota
	// StateOpen short-circuits every call until the retry clock says the
	// next HALF_OPEN attempt is due.
	StateOpen
	// StateHalfOpen admits a limited number of probe calls, gated by the
	// configured Permit, to test whether the collaborator has recovered.
	StateHalfOpen
	// StateMetricsOnly records outcomes into the window but never trips —
	// useful for observing a tripper's behavior before enforcing it.
	StateMetricsOnly
	// StateDisabled bypasses the breaker entirely; no window update, no
	// evaluation, every call proceeds.
	StateDisabled
	// StateForcedOpen is a manual override that behaves like StateOpen but
	// never expires on its own.
	StateForcedOpen
)

// String returns the lower_snake wire form used in signals and log fields.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	case StateMetricsOnly:
		return "metrics_only"
	case StateDisabled:
		return "disabled"
	case StateForcedOpen:
		return "forced_open"
	default:
		return "unknown"
	}
}
