package models

// SessionState represents the lifecycle state of one crawl session.
// A session moves IDLE → RUNNING → DONE; there is no paused or resumed
// state, and no crash recovery beyond whatever already reached the sink.
type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionRunning SessionState = "running"
	SessionDone    SessionState = "done"
)

// String implements fmt.Stringer for logging
func (s SessionState) String() string {
	if s == "" {
		return string(SessionIdle)
	}
	return string(s)
}

// VisitStatus represents the stored state of a URL in the visited set.
type VisitStatus string

const (
	VisitStatusUnset    VisitStatus = ""          // Zero value = unset/unknown
	VisitStatusSeen     VisitStatus = "seen"      // URL admitted to the frontier or already fetched
	VisitStatusNotFound VisitStatus = "not_found" // URL not in the store
)

// String implements fmt.Stringer for logging
func (s VisitStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}
