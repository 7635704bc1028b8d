package permission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/approval"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func evidenceFile() *attachment.Attachment {
	return &attachment.Attachment{ID: "e1", Kind: attachment.EvidenceFile}
}

func correspondenceFile() *attachment.Attachment {
	return &attachment.Attachment{ID: "c1", Kind: attachment.Correspondence}
}

func input(code status.Code, r role.Role, mutators ...func(in *Input)) *Input {
	ret := &Input{
		Obligation: &model.Obligation{ID: "o1", Status: code, AssignedArea: "LEGAL"},
		Actor:      Actor{ID: "u1", Role: r},
		Now:        now,
	}
	for _, m := range mutators {
		m(ret)
	}
	return ret
}

func inArea(in *Input) { in.Actor.InAssignedArea = true }
func withEvidence(in *Input) { in.Attachments = append(in.Attachments, evidenceFile()) }
func withCorrespondence(in *Input) { in.Attachments = append(in.Attachments, correspondenceFile()) }
func conference(in *Input) { in.Obligation.ConferenceApproved = true }

func TestEvaluator_Decide(t *testing.T) {
	evaluator := New(nil)

	tests := []struct {
		name    string
		action  Action
		input   *Input
		allowed bool
		kind    types.Kind
		reasons []string
	}{
		{
			name:    "send to analysis from progress with evidence",
			action:  SendToAnalysis,
			input:   input(status.EmAndamento, role.Executor, inArea, withEvidence),
			allowed: true,
		},
		{
			name:    "send to analysis while overdue without justification",
			action:  SendToAnalysis,
			input:   input(status.Atrasada, role.Executor, inArea, withEvidence),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonMissingJustification},
		},
		{
			name:   "send to analysis while overdue after justification",
			action: SendToAnalysis,
			input: input(status.Atrasada, role.AdvancedExecutor, inArea, withEvidence, func(in *Input) {
				in.Obligation.DelayJustification = "supplier strike"
			}),
			allowed: true,
		},
		{
			name:    "send to analysis lists every failing guard",
			action:  SendToAnalysis,
			input:   input(status.Atrasada, role.Administrator),
			kind:    types.KindPermissionDenied,
			reasons: []string{ReasonExecutorOnly, ReasonNotAssignedArea, ReasonMissingEvidence, ReasonMissingJustification},
		},
		{
			name:    "correspondence outside validation",
			action:  AttachCorrespondence,
			input:   input(status.EmAndamento, role.Administrator, conference),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonCorrespondenceStage},
		},
		{
			name:    "correspondence before conference approval",
			action:  AttachCorrespondence,
			input:   input(status.EmValidacaoRegulatorio, role.SignerValidator),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonConferenceNotApproved},
		},
		{
			name:    "correspondence by executor",
			action:  AttachCorrespondence,
			input:   input(status.EmValidacaoRegulatorio, role.Executor, inArea, conference),
			kind:    types.KindPermissionDenied,
			reasons: []string{ReasonElevatedOnly},
		},
		{
			name:    "request adjustments after conference approval",
			action:  RequestAdjustments,
			input:   input(status.EmValidacaoRegulatorio, role.SystemManager, conference),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonConferenceApproved},
		},
		{
			name:    "approve conference",
			action:  ApproveConference,
			input:   input(status.EmValidacaoRegulatorio, role.SystemManager),
			allowed: true,
		},
		{
			name:    "justify delay outside area",
			action:  JustifyDelay,
			input:   input(status.Atrasada, role.Administrator),
			kind:    types.KindPermissionDenied,
			reasons: []string{ReasonNotAssignedArea},
		},
		{
			name:    "protocol without correspondence",
			action:  AttachProtocol,
			input:   input(status.EmValidacaoRegulatorio, role.Administrator, conference),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonMissingCorrespond},
		},
		{
			name:    "protocol with correspondence",
			action:  AttachProtocol,
			input:   input(status.EmValidacaoRegulatorio, role.Administrator, conference, withCorrespondence),
			allowed: true,
		},
		{
			name:    "protocol on concluded obligation",
			action:  AttachProtocol,
			input:   input(status.Concluido, role.SystemManager, withCorrespondence),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonConcluded, ReasonProtocolStage},
		},
		{
			name:    "manager stage requires acknowledgment",
			action:  AdvanceRouting,
			input:   input(status.EmAnaliseGerenteRegulatorio, role.Administrator, func(in *Input) { in.Obligation.AckRequired = true }),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonAckPending},
		},
		{
			name:   "manager stage with acknowledgment",
			action: AdvanceRouting,
			input: input(status.EmAnaliseGerenteRegulatorio, role.Administrator, func(in *Input) {
				in.Obligation.AckRequired = true
				in.Obligation.AckChecked = true
			}),
			allowed: true,
		},
		{
			name:    "approval stage requires advanced executor",
			action:  AdvanceRouting,
			input:   input(status.EmAprovacao, role.Administrator),
			kind:    types.KindPermissionDenied,
			reasons: []string{ReasonRoutingRole},
		},
		{name: "approval stage advanced executor", action: Approve, input: input(status.EmAprovacao, role.AdvancedExecutor), allowed: true},
		{name: "analysis stage system manager", action: AdvanceRouting, input: input(status.AnaliseRegulatoria, role.SystemManager), allowed: true},
		{name: "notarization requires administrator", action: AdvanceRouting, input: input(status.EmChancelamento, role.SystemManager), kind: types.KindPermissionDenied, reasons: []string{ReasonRoutingRole}},
		{
			name:    "reject outside decision stages",
			action:  Reject,
			input:   input(status.EmChancelamento, role.Administrator),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonNotDecisionStage},
		},
		{
			name:    "board signature off roster",
			action:  AdvanceRouting,
			input:   input(status.EmAssinaturaDiretoria, role.Administrator, func(in *Input) { in.Signers = []string{"A", "B"} }),
			kind:    types.KindPermissionDenied,
			reasons: []string{approval.ReasonNotOnRoster},
		},
		{
			name:   "board signature second vote at level",
			action: Approve,
			input: input(status.EmAssinaturaDiretoria, role.SignerValidator, func(in *Input) {
				in.Actor.ID = "A"
				in.Signers = []string{"A", "B"}
				in.Obligation.SignatureLevel = 1
				in.History = model.NewHistory([]*model.TransitionRecord{{
					Sequence: 1, Status: status.EmAssinaturaDiretoria, Level: 1,
					Approval: model.ApprovalApproved, Actor: model.Actor{ResponsibleID: "A"},
				}}, nil)
			}),
			kind:    types.KindPreconditionFailed,
			reasons: []string{approval.ReasonAlreadyApproved},
		},
		{
			name:   "board signature next level",
			action: Approve,
			input: input(status.EmAssinaturaDiretoria, role.SignerValidator, func(in *Input) {
				in.Actor.ID = "A"
				in.Signers = []string{"A", "B"}
				in.Obligation.SignatureLevel = 2
				in.History = model.NewHistory([]*model.TransitionRecord{{
					Sequence: 1, Status: status.EmAssinaturaDiretoria, Level: 1,
					Approval: model.ApprovalApproved, Actor: model.Actor{ResponsibleID: "A"},
				}}, nil)
			}),
			allowed: true,
		},
		{name: "routing from execution", action: AdvanceRouting, input: input(status.EmAndamento, role.Administrator), kind: types.KindPermissionDenied, reasons: []string{ReasonNotRoutable}},
		{name: "comment before start outside area", action: Comment, input: input(status.NaoIniciado, role.Administrator), kind: types.KindPermissionDenied, reasons: []string{ReasonNotStartedArea}},
		{name: "comment before start in area", action: Comment, input: input(status.NaoIniciado, role.Executor, inArea), allowed: true},
		{name: "comment in progress by manager", action: Comment, input: input(status.EmAndamento, role.SystemManager), allowed: true},
		{name: "comment in progress by conditioning area", action: Comment, input: input(status.Pendente, role.Executor, func(in *Input) { in.Actor.InConditioningArea = true }), allowed: true},
		{name: "comment in validation by executor", action: Comment, input: input(status.EmValidacaoRegulatorio, role.Executor, inArea), kind: types.KindPermissionDenied, reasons: []string{ReasonValidationRoles}},
		{name: "attach other on concluded by signer", action: AttachOther, input: input(status.Concluido, role.SignerValidator), allowed: true},
		{name: "attach other on suspended by executor", action: AttachOther, input: input(status.NaoAplicavelSuspensa, role.Executor, inArea), kind: types.KindPermissionDenied, reasons: []string{ReasonClosedRestricted}},
		{name: "comment after routing approval", action: Comment, input: input(status.AprovacaoTramitacao, role.Administrator), kind: types.KindPermissionDenied, reasons: []string{ReasonRoutingApproved}},
		{name: "comment at approval by stage approver", action: Comment, input: input(status.EmAprovacao, role.AdvancedExecutor), allowed: true},
		{name: "comment at approval by executor", action: Comment, input: input(status.EmAprovacao, role.Executor), kind: types.KindPermissionDenied, reasons: []string{ReasonStageRoles}},
		{name: "viewer is read only", action: Comment, input: input(status.EmAndamento, role.Viewer, inArea), kind: types.KindPermissionDenied, reasons: []string{ReasonReadOnly}},
		{name: "mark not applicable when closed", action: MarkNotApplicable, input: input(status.Arquivado, role.Administrator), kind: types.KindPreconditionFailed, reasons: []string{ReasonClosed}},
		{name: "mark not applicable", action: MarkNotApplicable, input: input(status.EmAprovacao, role.SystemManager), allowed: true},
		{name: "mark not applicable while overdue unjustified", action: MarkNotApplicable, input: input(status.Atrasada, role.Administrator), kind: types.KindPreconditionFailed, reasons: []string{ReasonMissingJustification}},
		{name: "mark not applicable while overdue justified", action: MarkNotApplicable, input: input(status.Atrasada, role.Administrator, func(in *Input) { in.Obligation.DelayJustification = "supplier strike" }), allowed: true},
		{name: "delete fresh obligation", action: Delete, input: input(status.NaoIniciado, role.Administrator), allowed: true},
		{
			name:   "delete obligation sent with history",
			action: Delete,
			input: input(status.Pendente, role.Administrator, func(in *Input) {
				in.Obligation.SentToArea = true
				in.History = model.NewHistory([]*model.TransitionRecord{{Sequence: 1, Status: status.NaoIniciado}}, nil)
			}),
			kind:    types.KindPreconditionFailed,
			reasons: []string{ReasonAlreadySent, ReasonHasHistory},
		},
		{name: "edit by executor", action: Edit, input: input(status.EmAndamento, role.Executor, inArea), kind: types.KindPermissionDenied, reasons: []string{ReasonManagerOnly}},
		{name: "acknowledge", action: Acknowledge, input: input(status.EmAnaliseGerenteRegulatorio, role.Administrator), allowed: true},
		{name: "send to area", action: SendToArea, input: input(status.NaoIniciado, role.SystemManager), allowed: true},
		{name: "route to approval without correspondence", action: RouteToApproval, input: input(status.EmValidacaoRegulatorio, role.Administrator, conference), kind: types.KindPreconditionFailed, reasons: []string{ReasonMissingCorrespond}},
		{
			name:   "mark overdue after deadline",
			action: MarkOverdue,
			input: input(status.EmAndamento, role.Administrator, func(in *Input) {
				deadline := now.Add(-time.Hour)
				in.Obligation.Deadline = &deadline
			}),
			allowed: true,
		},
		{name: "mark overdue without deadline", action: MarkOverdue, input: input(status.EmAndamento, role.Administrator), kind: types.KindPreconditionFailed, reasons: []string{ReasonDeadlineAhead}},
		{name: "unregistered status", action: Comment, input: input(status.Code(99), role.Administrator), kind: types.KindPreconditionFailed, reasons: []string{ReasonUnknownStatus}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := evaluator.Decide(tc.action, tc.input)
			assert.Equal(t, tc.allowed, decision.Allowed)
			assert.Equal(t, tc.reasons, decision.Reasons)
			assert.Equal(t, tc.kind, decision.Kind)
			err := evaluator.Check(tc.action, tc.input)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.kind, types.KindOf(err))
			assert.Equal(t, tc.reasons[0], decision.Reason)
		})
	}
}

func TestEvaluator_Policy(t *testing.T) {
	strict, err := policy.New(&policy.Config{RoutingApprovalGuard: policy.RoutingGuardStrict, Conditioning: policy.ConditioningEnforce})
	require.NoError(t, err)
	legacy := New(nil)
	enforced := New(strict)

	routed := input(status.AprovacaoTramitacao, role.Administrator)
	assert.False(t, legacy.Decide(Comment, routed).Allowed)
	assert.True(t, enforced.Decide(Comment, routed).Allowed)
	assert.Equal(t, []string{ReasonRoutingManagers}, enforced.Decide(AttachOther, input(status.AprovacaoTramitacao, role.SignerValidator)).Reasons)

	closing := input(status.AprovacaoTramitacao, role.Administrator, withCorrespondence, func(in *Input) { in.OpenDependents = 2 })
	warned := legacy.Decide(AttachProtocol, closing)
	assert.True(t, warned.Allowed)
	assert.Equal(t, []string{ReasonOpenDependents}, warned.Warnings)

	blocked := enforced.Decide(AttachProtocol, closing)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, []string{ReasonOpenDependents}, blocked.Reasons)
}

func TestEvaluator_PolicyRules(t *testing.T) {
	p, err := policy.New(&policy.Config{Rules: []*policy.Rule{{
		Action: string(SendToAnalysis),
		Expr:   `attachments.filter(k, k == "EVIDENCE_FILE").size() > 0 || obligation.criticality != "HIGH"`,
		Reason: "High criticality obligations need an evidence file",
	}}})
	require.NoError(t, err)
	evaluator := New(p)

	link := func(in *Input) {
		in.Attachments = []*attachment.Attachment{{ID: "l1", Kind: attachment.EvidenceLink}}
		in.Obligation.Criticality = "HIGH"
	}
	decision := evaluator.Decide(SendToAnalysis, input(status.EmAndamento, role.Executor, inArea, link))
	assert.False(t, decision.Allowed)
	assert.Equal(t, types.KindPreconditionFailed, decision.Kind)
	assert.Equal(t, "High criticality obligations need an evidence file", decision.Reason)

	assert.True(t, evaluator.Decide(SendToAnalysis, input(status.EmAndamento, role.Executor, inArea, withEvidence)).Allowed)
}

func TestEvaluator_Evaluate(t *testing.T) {
	set := New(nil).Evaluate(input(status.EmValidacaoRegulatorio, role.Administrator))
	assert.Len(t, set.Decisions, len(Actions()))
	assert.True(t, set.Allowed(ApproveConference))
	assert.True(t, set.Allowed(RequestAdjustments))
	assert.False(t, set.Allowed(AttachCorrespondence))
	assert.Equal(t, ReasonConferenceNotApproved, set.Decision(AttachCorrespondence).Reason)
	assert.Contains(t, set.AllowedActions(), Comment)
	assert.NotContains(t, set.AllowedActions(), SendToAnalysis)
}
