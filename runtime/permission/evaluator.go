// Package permission decides which actions an actor may take on an
// obligation. Every rule lives in one table keyed by action; each rule is an
// ordered list of guards and a denial reports every failing guard.
package permission

import (
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/planner"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/approval"
)

type guard func(e *Evaluator, in *Input) *denial

// Evaluator applies the permission table and optional policy rules.
type Evaluator struct {
	policy *policy.Policy
}

// New creates an evaluator; a nil policy means the default behaviour.
func New(p *policy.Policy) *Evaluator {
	return &Evaluator{policy: p}
}

// Policy returns the policy in use.
func (e *Evaluator) Policy() *policy.Policy {
	return e.policy
}

// Evaluate returns a decision for every action.
func (e *Evaluator) Evaluate(in *Input) *Set {
	decisions := make([]*Decision, 0, len(actions))
	for _, action := range actions {
		decisions = append(decisions, e.Decide(action, in))
	}
	return newSet(decisions)
}

// Decide returns the decision for action.
func (e *Evaluator) Decide(action Action, in *Input) *Decision {
	if in == nil || in.Obligation == nil || !in.Status().Valid() {
		return newDecision(action, []*denial{unmet(ReasonUnknownStatus)}, nil)
	}
	var denials []*denial
	if in.Actor.Role == role.Viewer {
		denials = append(denials, denied(ReasonReadOnly))
	}
	for _, g := range rules[action] {
		if d := g(e, in); d != nil {
			denials = append(denials, d)
		}
	}
	if e.policy.HasRules(string(action)) {
		for _, reason := range e.policy.Check(string(action), in.vars()) {
			denials = append(denials, unmet(reason))
		}
	}
	var warnings []string
	if action == AttachProtocol && in.OpenDependents > 0 && !e.policy.EnforceConditioning() {
		warnings = append(warnings, ReasonOpenDependents)
	}
	return newDecision(action, denials, warnings)
}

// Check returns nil when action is allowed, otherwise a typed error carrying
// the same reasons Decide reports.
func (e *Evaluator) Check(action Action, in *Input) error {
	return e.Decide(action, in).Err()
}

var rules map[Action][]guard

func init() {
	rules = map[Action][]guard{
		Comment:     {actGate},
		AttachOther: {actGate},
		AttachEvidence: {
			statusIn(ReasonNotExecution, status.NaoIniciado, status.Pendente, status.EmAndamento, status.Atrasada),
			assignedArea,
		},
		AttachCorrespondence: {
			statusIn(ReasonCorrespondenceStage, status.EmValidacaoRegulatorio),
			roleIn(ReasonElevatedOnly, role.Administrator, role.SystemManager, role.SignerValidator),
			conferenceApproved(true),
		},
		RequestAdjustments: {
			statusIn(ReasonNotValidation, status.EmValidacaoRegulatorio),
			roleIn(ReasonElevatedOnly, role.Administrator, role.SystemManager, role.SignerValidator),
			conferenceApproved(false),
		},
		ApproveConference: {
			statusIn(ReasonNotValidation, status.EmValidacaoRegulatorio),
			roleIn(ReasonElevatedOnly, role.Administrator, role.SystemManager, role.SignerValidator),
			conferenceApproved(false),
		},
		JustifyDelay: {
			statusIn(ReasonNotOverdue, status.Atrasada),
			assignedArea,
		},
		SendToAnalysis: {
			statusIn(ReasonNotExecution, status.NaoIniciado, status.Pendente, status.EmAndamento, status.Atrasada),
			executor,
			assignedArea,
			evidence,
			justified,
		},
		AdvanceRouting: {routable, routingRole, acknowledged},
		Approve:        {decisionStage, routable, routingRole, acknowledged},
		Reject:         {decisionStage, routable, routingRole, acknowledged},
		AttachProtocol: {
			notConcluded,
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			statusIn(ReasonProtocolStage, status.EmValidacaoRegulatorio, status.AprovacaoTramitacao),
			correspondence,
			dependents,
		},
		MarkNotApplicable: {
			open,
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			justified,
		},
		Delete: {
			roleIn(ReasonAdministratorOnly, role.Administrator),
			statusIn(ReasonNotDeletable, status.NaoIniciado, status.Pendente),
			notSent,
			noHistory,
		},
		Edit: {
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			open,
		},
		Acknowledge: {
			statusIn(ReasonNotManagerStage, status.EmAnaliseGerenteRegulatorio),
			roleIn(ReasonAdministratorOnly, role.Administrator),
			notAcknowledged,
		},
		SendToArea: {
			statusIn(ReasonNotSendable, status.NaoIniciado, status.Pendente),
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			notSent,
		},
		RouteToApproval: {
			statusIn(ReasonNotValidation, status.EmValidacaoRegulatorio),
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			conferenceApproved(true),
			correspondence,
		},
		MarkOverdue: {
			statusIn(ReasonNotRunning, status.NaoIniciado, status.Pendente, status.EmAndamento),
			roleIn(ReasonManagerOnly, role.Administrator, role.SystemManager),
			deadlinePassed,
		},
	}
}

// actGate is the comment and "other" attachment gate keyed by status.
func actGate(e *Evaluator, in *Input) *denial {
	r := in.Actor.Role
	current := in.Status()
	switch {
	case current.Terminal():
		if !r.Elevated() {
			return denied(ReasonClosedRestricted)
		}
	case current == status.NaoIniciado:
		if !in.Actor.InAssignedArea {
			return denied(ReasonNotStartedArea)
		}
	case current == status.EmValidacaoRegulatorio:
		if !r.Elevated() {
			return denied(ReasonValidationRoles)
		}
	case current.Is(status.Pendente, status.EmAndamento, status.Atrasada):
		if !in.Actor.InAssignedArea && !in.Actor.InConditioningArea && !r.Manager() {
			return denied(ReasonExecutionRoles)
		}
	case current == status.AprovacaoTramitacao:
		if !e.policy.StrictRoutingGuard() {
			// role != ADMINISTRATOR || role != SYSTEM_MANAGER holds for every role.
			return denied(ReasonRoutingApproved)
		}
		if !r.Manager() {
			return denied(ReasonRoutingManagers)
		}
	default:
		if !r.Elevated() && !stageApprover(in) {
			return denied(ReasonStageRoles)
		}
	}
	return nil
}

// stageApprover reports whether the actor is the one routing at the current
// status, ignoring votes already cast.
func stageApprover(in *Input) bool {
	current := in.Status()
	if !planner.Routable(current) {
		return false
	}
	if current == status.EmAssinaturaDiretoria {
		return in.Quorum().OnRoster(in.Actor.ID)
	}
	return routingRole(nil, in) == nil
}

func statusIn(reason string, codes ...status.Code) guard {
	return func(_ *Evaluator, in *Input) *denial {
		if !in.Status().Is(codes...) {
			return unmet(reason)
		}
		return nil
	}
}

func roleIn(reason string, roles ...role.Role) guard {
	return func(_ *Evaluator, in *Input) *denial {
		if !in.Actor.Role.In(roles...) {
			return denied(reason)
		}
		return nil
	}
}

func assignedArea(_ *Evaluator, in *Input) *denial {
	if !in.Actor.InAssignedArea {
		return denied(ReasonNotAssignedArea)
	}
	return nil
}

func executor(_ *Evaluator, in *Input) *denial {
	if !in.Actor.Role.Executor() {
		return denied(ReasonExecutorOnly)
	}
	return nil
}

func evidence(_ *Evaluator, in *Input) *denial {
	if !attachment.HasEvidence(in.Attachments) {
		return unmet(ReasonMissingEvidence)
	}
	return nil
}

func correspondence(_ *Evaluator, in *Input) *denial {
	if !attachment.HasCorrespondence(in.Attachments) {
		return unmet(ReasonMissingCorrespond)
	}
	return nil
}

func justified(_ *Evaluator, in *Input) *denial {
	if in.Status() == status.Atrasada && !in.Obligation.DelayJustified() {
		return unmet(ReasonMissingJustification)
	}
	return nil
}

func conferenceApproved(expected bool) guard {
	return func(_ *Evaluator, in *Input) *denial {
		switch approved := in.Obligation.ConferenceApproved; {
		case expected && !approved:
			return unmet(ReasonConferenceNotApproved)
		case !expected && approved:
			return unmet(ReasonConferenceApproved)
		}
		return nil
	}
}

// routable is the explicit routing allow-list.
func routable(_ *Evaluator, in *Input) *denial {
	if !planner.Routable(in.Status()) {
		return denied(ReasonNotRoutable)
	}
	return nil
}

// routingRole checks who may route at each routable status.
func routingRole(_ *Evaluator, in *Input) *denial {
	r := in.Actor.Role
	switch in.Status() {
	case status.EmAnaliseGerenteRegulatorio, status.EmChancelamento:
		if r != role.Administrator {
			return denied(ReasonRoutingRole)
		}
	case status.EmAprovacao:
		if r != role.AdvancedExecutor {
			return denied(ReasonRoutingRole)
		}
	case status.AnaliseRegulatoria:
		if !r.Manager() {
			return denied(ReasonRoutingRole)
		}
	case status.EmAssinaturaDiretoria:
		quorum := in.Quorum()
		reasons := quorum.Eligible(in.Actor.ID)
		if len(reasons) == 0 {
			return nil
		}
		if reasons[0] == approval.ReasonNotOnRoster {
			return denied(reasons[0])
		}
		return unmet(reasons[0])
	default:
		return nil
	}
	return nil
}

func acknowledged(_ *Evaluator, in *Input) *denial {
	if in.Status() == status.EmAnaliseGerenteRegulatorio && !approval.Acknowledged(in.Obligation) {
		return unmet(ReasonAckPending)
	}
	return nil
}

func decisionStage(_ *Evaluator, in *Input) *denial {
	if !in.Status().Is(status.EmAprovacao, status.EmAssinaturaDiretoria) {
		return unmet(ReasonNotDecisionStage)
	}
	return nil
}

func notConcluded(_ *Evaluator, in *Input) *denial {
	if in.Status() == status.Concluido {
		return unmet(ReasonConcluded)
	}
	return nil
}

func dependents(e *Evaluator, in *Input) *denial {
	if in.OpenDependents > 0 && e.policy.EnforceConditioning() {
		return unmet(ReasonOpenDependents)
	}
	return nil
}

func open(_ *Evaluator, in *Input) *denial {
	if in.Status().Terminal() {
		return unmet(ReasonClosed)
	}
	return nil
}

func notSent(_ *Evaluator, in *Input) *denial {
	if in.Obligation.SentToArea {
		return unmet(ReasonAlreadySent)
	}
	return nil
}

func noHistory(_ *Evaluator, in *Input) *denial {
	if !in.History.Empty() {
		return unmet(ReasonHasHistory)
	}
	return nil
}

func notAcknowledged(_ *Evaluator, in *Input) *denial {
	if in.Obligation.AckChecked {
		return unmet(ReasonAcknowledged)
	}
	return nil
}

func deadlinePassed(_ *Evaluator, in *Input) *denial {
	if !in.pastDeadline() {
		return unmet(ReasonDeadlineAhead)
	}
	return nil
}
