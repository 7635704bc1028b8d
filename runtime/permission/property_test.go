package permission

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/planner"
)

func inputGen() gopter.Gen {
	kinds := []interface{}{attachment.EvidenceFile, attachment.EvidenceLink, attachment.Correspondence, attachment.Protocol, attachment.Other}
	roles := make([]interface{}, 0, len(role.All()))
	for _, r := range role.All() {
		roles = append(roles, r)
	}
	return gopter.CombineGens(
		gen.IntRange(1, 18),
		gen.OneConstOf(roles...),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.SliceOfN(3, gen.OneConstOf(kinds...)),
		gen.OneConstOf("A", "B", "C"),
	).Map(func(values []interface{}) *Input {
		var attachments []*attachment.Attachment
		for _, k := range values[7].([]attachment.Kind) {
			attachments = append(attachments, &attachment.Attachment{Kind: k})
		}
		ret := &Input{
			Obligation: &model.Obligation{
				ID:                 "o1",
				Status:             status.Code(values[0].(int)),
				ConferenceApproved: values[4].(bool),
				SentToArea:         values[5].(bool),
				AckRequired:        values[6].(bool),
			},
			Actor: Actor{
				ID:                 values[8].(string),
				Role:               values[1].(role.Role),
				InAssignedArea:     values[2].(bool),
				InConditioningArea: values[3].(bool),
			},
			Signers:     []string{"A", "B"},
			Attachments: attachments,
			Now:         now,
		}
		return ret
	})
}

func TestEvaluator_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	evaluator := New(nil)

	properties.Property("routing outside the allow-list is denied for every role", prop.ForAll(
		func(in *Input) bool {
			if planner.Routable(in.Status()) {
				return true
			}
			for _, action := range []Action{AdvanceRouting, Approve, Reject} {
				if evaluator.Decide(action, in).Allowed {
					return false
				}
			}
			return true
		},
		inputGen(),
	))

	properties.Property("denials carry a reason and a kind", prop.ForAll(
		func(in *Input) bool {
			for _, d := range evaluator.Evaluate(in).Decisions {
				if d.Allowed {
					if d.Reason != "" || len(d.Reasons) > 0 {
						return false
					}
					continue
				}
				if d.Reason == "" || d.Reason != d.Reasons[0] {
					return false
				}
				if d.Kind != types.KindPermissionDenied && d.Kind != types.KindPreconditionFailed {
					return false
				}
			}
			return true
		},
		inputGen(),
	))

	properties.Property("evaluation is deterministic", prop.ForAll(
		func(in *Input) bool {
			return reflect.DeepEqual(evaluator.Evaluate(in).Decisions, evaluator.Evaluate(in).Decisions)
		},
		inputGen(),
	))

	properties.Property("overdue without justification never reaches analysis", prop.ForAll(
		func(in *Input) bool {
			in.Obligation.Status = status.Atrasada
			in.Obligation.DelayJustification = ""
			d := evaluator.Decide(SendToAnalysis, in)
			if d.Allowed {
				return false
			}
			for _, reason := range d.Reasons {
				if reason == ReasonMissingJustification {
					return true
				}
			}
			return false
		},
		inputGen(),
	))

	properties.Property("overdue without justification cannot be suspended", prop.ForAll(
		func(in *Input) bool {
			in.Obligation.Status = status.Atrasada
			in.Obligation.DelayJustification = ""
			return !evaluator.Decide(MarkNotApplicable, in).Allowed
		},
		inputGen(),
	))

	properties.Property("sending to analysis requires evidence", prop.ForAll(
		func(in *Input) bool {
			if !evaluator.Decide(SendToAnalysis, in).Allowed {
				return true
			}
			return attachment.HasEvidence(in.Attachments) && in.Actor.InAssignedArea && in.Actor.Role.Executor()
		},
		inputGen(),
	))

	properties.Property("correspondence is only handled in regulatory validation", prop.ForAll(
		func(in *Input) bool {
			return !evaluator.Decide(AttachCorrespondence, in).Allowed || in.Status() == status.EmValidacaoRegulatorio
		},
		inputGen(),
	))

	properties.TestingRun(t)
}
