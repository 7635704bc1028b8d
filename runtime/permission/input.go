package permission

import (
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/approval"
)

// Actor is the caller as seen by the evaluator.
type Actor struct {
	ID                 string    `json:"id"`
	Role               role.Role `json:"role"`
	InAssignedArea     bool      `json:"inAssignedArea"`
	InConditioningArea bool      `json:"inConditioningArea"`
}

// Input carries everything a decision depends on. Nothing is read from
// ambient state.
type Input struct {
	Obligation     *model.Obligation
	Actor          Actor
	Signers        []string
	Attachments    []*attachment.Attachment
	History        model.History
	OpenDependents int
	Now            time.Time
}

// Status returns the obligation status.
func (i *Input) Status() status.Code {
	if i.Obligation == nil {
		return status.Unknown
	}
	return i.Obligation.Status
}

// Quorum returns the vote state of the current signature level.
func (i *Input) Quorum() *approval.Quorum {
	return approval.NewQuorum(i.Signers, i.Obligation.SignatureLevel, i.History)
}

func (i *Input) pastDeadline() bool {
	now := i.Now
	if now.IsZero() {
		now = time.Now()
	}
	return i.Obligation.PastDeadline(now)
}

// vars exposes the input to policy rules.
func (i *Input) vars() map[string]any {
	o := i.Obligation
	kinds := make([]string, 0, len(i.Attachments))
	for _, a := range i.Attachments {
		kinds = append(kinds, string(attachment.Classify(a)))
	}
	quorum := i.Quorum()
	return map[string]any{
		"status":      o.Status.Key(),
		"attachments": kinds,
		"obligation": map[string]any{
			"id":                 o.ID,
			"status":             o.Status.Key(),
			"assignedArea":       o.AssignedArea,
			"conditioningAreas":  append([]string{}, o.ConditioningAreas...),
			"classification":     string(o.Classification),
			"principalId":        o.PrincipalID,
			"criticality":        o.Criticality,
			"conferenceApproved": o.ConferenceApproved,
			"sentToArea":         o.SentToArea,
			"delayJustified":     o.DelayJustified(),
			"ackRequired":        o.AckRequired,
			"ackChecked":         o.AckChecked,
			"signatureLevel":     int64(o.SignatureLevel),
			"pastDeadline":       i.pastDeadline(),
			"openDependents":     int64(i.OpenDependents),
		},
		"actor": map[string]any{
			"id":                 i.Actor.ID,
			"role":               string(i.Actor.Role),
			"inAssignedArea":     i.Actor.InAssignedArea,
			"inConditioningArea": i.Actor.InConditioningArea,
			"signer":             quorum.OnRoster(i.Actor.ID),
		},
	}
}
