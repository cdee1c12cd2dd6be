// Package audit records security-relevant module events.
//
// Audit records are separate from technical logs. Each record is chained to
// its predecessor by a SHA3-256 hash so that removal or modification of a
// record is detectable with VerifyChain.
//
// Records never carry key material or credentials.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the category of an audit record.
type EventType string

// Module lifecycle events.
const (
	EventStateChanged EventType = "STATE_CHANGED"
	EventPOSTPassed   EventType = "POST_PASSED"
	EventPOSTFailed   EventType = "POST_FAILED"
	EventPCTFailed    EventType = "PCT_FAILED"
)

// Operator events.
const (
	EventLogin      EventType = "LOGIN"
	EventLoginFail  EventType = "LOGIN_FAILED"
	EventLockedOut  EventType = "LOCKED_OUT"
	EventUnlocked   EventType = "LOCKOUT_RELEASED"
	EventLogout     EventType = "LOGOUT"
	EventCSPExport  EventType = "CSP_EXPORT"
	EventCSPBlocked EventType = "CSP_EXPORT_BLOCKED"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Actor identifies who performed the action: "system" for the module
// itself, "operator" for an authenticated role.
type Actor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SystemActor is the actor of module-initiated events.
var SystemActor = Actor{Type: "system", ID: "module"}

// Context carries the details of an event.
type Context struct {
	State     string `json:"state,omitempty"`
	Test      string `json:"test,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	CSP       string `json:"csp,omitempty"`
	Role      string `json:"role,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Event is a single audit record.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Context   Context   `json:"context,omitempty"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev,omitempty"`
	Hash      string    `json:"hash,omitempty"`
}

// NewEvent creates an event stamped with now in UTC and the system actor.
func NewEvent(eventType EventType, result Result, now time.Time) *Event {
	return &Event{
		EventType: eventType,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Actor:     SystemActor,
		Result:    result,
	}
}

// WithActor overrides the system actor.
func (e *Event) WithActor(actor Actor) *Event {
	e.Actor = actor
	return e
}

// WithContext sets the context field.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// Validate checks that required fields are present.
func (e *Event) Validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if e.Actor.Type == "" || e.Actor.ID == "" {
		return fmt.Errorf("actor type and id are required")
	}
	if e.Result == "" {
		return fmt.Errorf("result is required")
	}
	return nil
}

// CanonicalJSON is the hashed representation: every field except Hash.
func (e *Event) CanonicalJSON() ([]byte, error) {
	c := *e
	c.Hash = ""
	return json.Marshal(c)
}

// JSON returns the full event as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}
