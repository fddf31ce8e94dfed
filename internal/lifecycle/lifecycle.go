// Package lifecycle holds the state machine shared by SCTIDs and scheme
// identifiers. It has no side effects: callers look up the next status and
// decide what to persist.
package lifecycle

import (
	"strings"

	dErrors "cis/pkg/domain-errors"
)

// Status is the lifecycle state of an identifier record.
type Status string

const (
	StatusAvailable  Status = "Available"
	StatusReserved   Status = "Reserved"
	StatusAssigned   Status = "Assigned"
	StatusPublished  Status = "Published"
	StatusDeprecated Status = "Deprecated"
	StatusReleased   Status = "Released"
)

// IsValid checks if the status is one of the six lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusAssigned, StatusPublished, StatusDeprecated, StatusReleased:
		return true
	}
	return false
}

// IsTerminal reports whether no action leads out of s.
func (s Status) IsTerminal() bool {
	return s == StatusDeprecated || s == StatusReleased
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts a status name in any letter case.
func ParseStatus(v string) (Status, error) {
	for _, s := range Statuses() {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status: "+v)
}

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusReserved, StatusAssigned, StatusPublished, StatusDeprecated, StatusReleased}
}

// Action is a lifecycle operation requested by a client.
type Action string

const (
	ActionGenerate  Action = "Generate"
	ActionReserve   Action = "Reserve"
	ActionRegister  Action = "Register"
	ActionDeprecate Action = "Deprecate"
	ActionRelease   Action = "Release"
	ActionPublish   Action = "Publish"
)

func (a Action) String() string { return string(a) }

// Verb is the lower-case form used in messages and routes.
func (a Action) Verb() string { return strings.ToLower(string(a)) }

// ParseAction accepts an action name in any letter case.
func ParseAction(v string) (Action, error) {
	for _, a := range Actions() {
		if strings.EqualFold(v, string(a)) {
			return a, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action: "+v)
}

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{ActionGenerate, ActionReserve, ActionRegister, ActionDeprecate, ActionRelease, ActionPublish}
}

var transitions = map[Status]map[Action]Status{
	StatusAvailable: {
		ActionGenerate: StatusAssigned,
		ActionReserve:  StatusReserved,
		ActionRegister: StatusAssigned,
	},
	StatusReserved: {
		ActionGenerate:  StatusAssigned,
		ActionRegister:  StatusAssigned,
		ActionDeprecate: StatusDeprecated,
		ActionRelease:   StatusReleased,
	},
	StatusAssigned: {
		ActionDeprecate: StatusDeprecated,
		ActionRelease:   StatusReleased,
		ActionPublish:   StatusPublished,
	},
	StatusPublished: {
		ActionDeprecate: StatusDeprecated,
	},
}

// Transition returns the status that action leads to from current, and false
// when the action is not permitted.
func Transition(current Status, action Action) (Status, bool) {
	next, ok := transitions[current][action]
	return next, ok
}

// Target returns the status every permitted application of action produces.
func Target(action Action) Status {
	switch action {
	case ActionReserve:
		return StatusReserved
	case ActionDeprecate:
		return StatusDeprecated
	case ActionRelease:
		return StatusReleased
	case ActionPublish:
		return StatusPublished
	default:
		return StatusAssigned
	}
}

// Apply is Transition with the rejection turned into a CodeConflict error
// naming the identifier and its current status.
func Apply(id string, current Status, action Action) (Status, error) {
	next, ok := Transition(current, action)
	if !ok {
		return "", Rejection(id, current, action)
	}
	return next, nil
}

// Rejection builds the error returned when action is not permitted.
func Rejection(id string, current Status, action Action) error {
	return dErrors.New(dErrors.CodeConflict,
		"Cannot "+action.Verb()+" "+id+", current status: "+string(current))
}
