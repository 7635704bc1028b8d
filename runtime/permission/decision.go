package permission

import (
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
)

// Decision is the verdict for one action.
type Decision struct {
	Action  Action     `json:"action"`
	Allowed bool       `json:"allowed"`
	Reason  string     `json:"reason,omitempty"`
	Reasons []string   `json:"reasons,omitempty"`
	Kind    types.Kind `json:"kind,omitempty"`
	// Warnings are informational findings that do not block the action.
	Warnings []string `json:"warnings,omitempty"`
}

// Err converts a denial into a typed error, nil when allowed.
func (d *Decision) Err() error {
	if d == nil || d.Allowed {
		return nil
	}
	return types.NewError(d.Kind, string(d.Action), d.Reasons...)
}

type denial struct {
	kind   types.Kind
	reason string
}

func denied(reason string) *denial {
	return &denial{kind: types.KindPermissionDenied, reason: reason}
}

func unmet(reason string) *denial {
	return &denial{kind: types.KindPreconditionFailed, reason: reason}
}

func newDecision(action Action, denials []*denial, warnings []string) *Decision {
	ret := &Decision{Action: action, Allowed: len(denials) == 0, Warnings: warnings}
	if ret.Allowed {
		return ret
	}
	ret.Kind = denials[0].kind
	ret.Reason = denials[0].reason
	for _, d := range denials {
		ret.Reasons = append(ret.Reasons, d.reason)
	}
	return ret
}

// Set holds a decision for every action.
type Set struct {
	Decisions []*Decision `json:"decisions"`
	index     map[Action]*Decision
}

func newSet(decisions []*Decision) *Set {
	ret := &Set{Decisions: decisions, index: make(map[Action]*Decision, len(decisions))}
	for _, d := range decisions {
		ret.index[d.Action] = d
	}
	return ret
}

// Decision returns the decision for action.
func (s *Set) Decision(action Action) *Decision {
	if s == nil {
		return nil
	}
	return s.index[action]
}

// Allowed reports whether action is allowed.
func (s *Set) Allowed(action Action) bool {
	d := s.Decision(action)
	return d != nil && d.Allowed
}

// AllowedActions lists the allowed actions in evaluation order.
func (s *Set) AllowedActions() []Action {
	var ret []Action
	for _, d := range s.Decisions {
		if d.Allowed {
			ret = append(ret, d.Action)
		}
	}
	return ret
}
