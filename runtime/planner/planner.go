// Package planner computes where a routing advance takes an obligation. The
// destination of the rework-loop statuses depends on history, so the planner
// is a table plus a lookback on the most recent anchor record.
package planner

import (
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

// Direction tells whether an advance follows the happy path.
type Direction string

const (
	Forward  Direction = "FORWARD"
	Backward Direction = "BACKWARD"
)

// Labels offered to the caller.
const (
	LabelSendToApproval        = "Send to Approval"
	LabelReturnToManager       = "Return to Regulatory Manager"
	LabelSendToAnalysis        = "Send to Regulatory Analysis"
	LabelSendToNotarization    = "Send to Notarization"
	LabelSendForBoardSignature = "Send for Board Signature"
	LabelSignAndApprove        = "Sign and Approve Routing"
	LabelRejectApproval        = "Reject and Send to Regulatory Analysis"
	LabelRejectSignature       = "Reject Signature"
)

// Advance describes one routing step.
type Advance struct {
	From      status.Code `json:"from"`
	Target    status.Code `json:"target"`
	Label     string      `json:"label"`
	Direction Direction   `json:"direction"`
	// Anchor is the record the decision was based on, if any.
	Anchor *model.TransitionRecord `json:"anchor,omitempty"`
}

type step struct {
	target    status.Code
	label     string
	direction Direction
}

type route struct {
	forward step
	// anchor and rework apply when the latest anchor record was rejected.
	anchor status.Code
	rework *step
	reject *step
}

var routes = map[status.Code]route{
	status.EmAnaliseGerenteRegulatorio: {
		forward: step{status.EmAprovacao, LabelSendToApproval, Forward},
	},
	status.EmAprovacao: {
		forward: step{status.AnaliseRegulatoria, LabelSendToAnalysis, Forward},
		anchor:  status.EmAssinaturaDiretoria,
		rework:  &step{status.EmAnaliseGerenteRegulatorio, LabelReturnToManager, Backward},
		reject:  &step{status.AnaliseRegulatoria, LabelRejectApproval, Backward},
	},
	status.AnaliseRegulatoria: {
		forward: step{status.EmChancelamento, LabelSendToNotarization, Forward},
		anchor:  status.EmAprovacao,
		rework:  &step{status.EmAnaliseGerenteRegulatorio, LabelReturnToManager, Backward},
	},
	status.EmChancelamento: {
		forward: step{status.EmAssinaturaDiretoria, LabelSendForBoardSignature, Forward},
	},
	status.EmAssinaturaDiretoria: {
		forward: step{status.AprovacaoTramitacao, LabelSignAndApprove, Forward},
		reject:  &step{status.EmAprovacao, LabelRejectSignature, Backward},
	},
}

// Routable reports whether current takes part in the routing chain.
func Routable(current status.Code) bool {
	_, ok := routes[current]
	return ok
}

// Statuses returns the routable statuses.
func Statuses() []status.Code {
	var ret []status.Code
	for _, s := range status.All() {
		if Routable(s.Code) {
			ret = append(ret, s.Code)
		}
	}
	return ret
}

// Next returns the advance offered at current, or nil when current is not
// routable.
func Next(current status.Code, history model.History) *Advance {
	r, ok := routes[current]
	if !ok {
		return nil
	}
	if r.rework != nil {
		if anchor := history.Anchor(r.anchor, current); anchor != nil && anchor.Approval == model.ApprovalRejected {
			return r.rework.advance(current, anchor)
		}
	}
	return r.forward.advance(current, nil)
}

// Reject returns where a rejection at current goes, or nil when current does
// not accept rejections.
func Reject(current status.Code) *Advance {
	r, ok := routes[current]
	if !ok || r.reject == nil {
		return nil
	}
	return r.reject.advance(current, nil)
}

// Plan resolves the advance for decision. An approval or NONE follows Next.
func Plan(current status.Code, history model.History, decision model.ApprovalFlag) *Advance {
	if decision == model.ApprovalRejected {
		return Reject(current)
	}
	return Next(current, history)
}

// NextAdvanceLabel returns the label of the advance offered at current.
func NextAdvanceLabel(current status.Code, history model.History) string {
	if next := Next(current, history); next != nil {
		return next.Label
	}
	return ""
}

func (s step) advance(from status.Code, anchor *model.TransitionRecord) *Advance {
	return &Advance{From: from, Target: s.target, Label: s.label, Direction: s.direction, Anchor: anchor}
}
