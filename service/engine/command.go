package engine

import (
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

// Target names the obligation an operation applies to. When set,
// ExpectedStatus and ExpectedVersion must match the stored obligation or the
// operation fails with a concurrency conflict.
type Target struct {
	ObligationID    string      `json:"obligationId"`
	ExpectedStatus  status.Code `json:"expectedStatus,omitempty"`
	ExpectedVersion int64       `json:"expectedVersion,omitempty"`
}

// CreateCommand registers a new obligation.
type CreateCommand struct {
	Obligation *model.Obligation `json:"obligation"`
}

// UpdateCommand edits descriptive fields; nil fields are left unchanged.
type UpdateCommand struct {
	Target
	Title             *string    `json:"title,omitempty"`
	Criticality       *string    `json:"criticality,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	ConditioningAreas *[]string  `json:"conditioningAreas,omitempty"`
	AckRequired       *bool      `json:"ackRequired,omitempty"`
	Observation       string     `json:"observation,omitempty"`
}

// NoteCommand carries an observation, optionally with attachments.
type NoteCommand struct {
	Target
	Observation string                   `json:"observation,omitempty"`
	Attachments []*attachment.Attachment `json:"attachments,omitempty"`
}

// DetachCommand removes one attachment.
type DetachCommand struct {
	Target
	AttachmentID string `json:"attachmentId"`
	Observation  string `json:"observation,omitempty"`
}

// JustifyDelayCommand records why an overdue obligation is late.
type JustifyDelayCommand struct {
	Target
	Justification string `json:"justification"`
}

// AdvanceCommand routes an obligation; Approval is NONE for a plain
// advance, APPROVED or REJECTED for a decision.
type AdvanceCommand struct {
	Target
	Observation string                   `json:"observation"`
	Approval    model.ApprovalFlag       `json:"approval,omitempty"`
	Attachments []*attachment.Attachment `json:"attachments,omitempty"`
}

// ProtocolCommand concludes an obligation with its protocol document.
type ProtocolCommand struct {
	Target
	ProtocolRegistry string                   `json:"protocolRegistry,omitempty"`
	ProcessNumber    string                   `json:"processNumber,omitempty"`
	Observation      string                   `json:"observation,omitempty"`
	Attachments      []*attachment.Attachment `json:"attachments"`
}

// NotApplicableCommand suspends an obligation.
type NotApplicableCommand struct {
	Target
	Justification string `json:"justification"`
}
