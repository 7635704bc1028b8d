package model

import (
	"strings"
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

// Classification tells whether an obligation depends on a principal one.
type Classification string

const (
	Simple      Classification = "SIMPLE"
	Conditioned Classification = "CONDITIONED"
)

// AreaType tags the relation between an obligation and an area.
type AreaType string

const (
	AreaAssigned     AreaType = "ASSIGNED"
	AreaConditioning AreaType = "CONDITIONING"
)

// AreaAssignment relates an obligation to an area.
type AreaAssignment struct {
	Area string   `json:"area"`
	Type AreaType `json:"type"`
}

// Obligation is the routed work item. Status is a cache of the latest
// transition; Version guards concurrent writers.
type Obligation struct {
	ID                     string         `json:"id"`
	Title                  string         `json:"title,omitempty"`
	Status                 status.Code    `json:"status"`
	AssignedArea           string         `json:"assignedArea"`
	ConditioningAreas      []string       `json:"conditioningAreas,omitempty"`
	Classification         Classification `json:"classification"`
	PrincipalID            string         `json:"principalId,omitempty"`
	Criticality            string         `json:"criticality,omitempty"`
	TechnicalResponsibleID string         `json:"technicalResponsibleId,omitempty"`

	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	ConferenceApproved bool `json:"conferenceApproved"`
	SentToArea         bool `json:"sentToArea"`

	DelayJustification string     `json:"delayJustification,omitempty"`
	DelayJustifiedAt   *time.Time `json:"delayJustifiedAt,omitempty"`
	DelayJustifiedBy   string     `json:"delayJustifiedBy,omitempty"`

	ProtocolRegistry string `json:"protocolRegistry,omitempty"`
	ProcessNumber    string `json:"processNumber,omitempty"`

	AckRequired bool `json:"ackRequired"`
	AckChecked  bool `json:"ackChecked"`

	SignatureLevel      int    `json:"signatureLevel"`
	NotApplicableReason string `json:"notApplicableReason,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (o *Obligation) Clone() *Obligation {
	if o == nil {
		return nil
	}
	ret := *o
	ret.ConditioningAreas = append([]string(nil), o.ConditioningAreas...)
	ret.StartDate = cloneTime(o.StartDate)
	ret.EndDate = cloneTime(o.EndDate)
	ret.Deadline = cloneTime(o.Deadline)
	ret.CompletedAt = cloneTime(o.CompletedAt)
	ret.DelayJustifiedAt = cloneTime(o.DelayJustifiedAt)
	return &ret
}

// Areas lists the assigned area followed by the conditioning ones.
func (o *Obligation) Areas() []AreaAssignment {
	var ret []AreaAssignment
	if o.AssignedArea != "" {
		ret = append(ret, AreaAssignment{Area: o.AssignedArea, Type: AreaAssigned})
	}
	for _, area := range o.ConditioningAreas {
		ret = append(ret, AreaAssignment{Area: area, Type: AreaConditioning})
	}
	return ret
}

// DelayJustified reports whether a non blank delay justification exists.
func (o *Obligation) DelayJustified() bool {
	return strings.TrimSpace(o.DelayJustification) != ""
}

// PastDeadline reports whether the deadline is before now.
func (o *Obligation) PastDeadline(now time.Time) bool {
	return o.Deadline != nil && now.After(*o.Deadline)
}

// Acknowledged reports whether the manager stage may be left: either no
// acknowledgment is mandated or it has been checked.
func (o *Obligation) Acknowledged() bool {
	return !o.AckRequired || o.AckChecked
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
