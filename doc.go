// Package breaker implements a circuit breaker for protecting callers of
// unreliable remote collaborators — HTTP services, databases, message
// brokers — against cascading failure.
//
// A Breaker wraps an arbitrary function. It times each call, classifies the
// outcome with a Tracker, folds it into a sliding Window, and asks a Tripper
// whether the window's current Metric warrants a state transition. Between
// CLOSED and OPEN there is a HALF_OPEN recovery phase gated by a RetryClock
// and throttled by a Permit.
//
// Two engines share this predicate algebra: Breaker, for a single-threaded
// caller, and Async, safe for concurrent callers, which additionally bounds
// concurrent HALF_OPEN probes with a non-blocking semaphore. Neither engine
// talks to another process — all state lives in the instance that owns it.
package breaker
