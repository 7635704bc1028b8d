package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

// ApprovalFlag is the decision carried by a transition record.
type ApprovalFlag string

const (
	ApprovalNone     ApprovalFlag = "NONE"
	ApprovalApproved ApprovalFlag = "APPROVED"
	ApprovalRejected ApprovalFlag = "REJECTED"
)

// ParseApprovalFlag accepts the flag names plus the legacy S/N codes. An empty
// value is NONE.
func ParseApprovalFlag(value string) (ApprovalFlag, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NONE":
		return ApprovalNone, nil
	case "APPROVED", "APPROVE", "S":
		return ApprovalApproved, nil
	case "REJECTED", "REJECT", "N":
		return ApprovalRejected, nil
	}
	return "", fmt.Errorf("unknown approval flag %q", value)
}

// Normalize maps the zero value to NONE.
func (f ApprovalFlag) Normalize() ApprovalFlag {
	if f == "" {
		return ApprovalNone
	}
	return f
}

// Actor identifies who wrote a record.
type Actor struct {
	ResponsibleID string `json:"responsibleId"`
	Area          string `json:"area,omitempty"`
}

// TransitionRecord is an immutable routing event. Status is the status the
// obligation held when the record was written; TargetStatus is where it went.
type TransitionRecord struct {
	ID              string                   `json:"id"`
	ObligationID    string                   `json:"obligationId"`
	Sequence        int64                    `json:"sequence"`
	Status          status.Code              `json:"status"`
	TargetStatus    status.Code              `json:"targetStatus"`
	OriginArea      string                   `json:"originArea,omitempty"`
	DestinationArea string                   `json:"destinationArea,omitempty"`
	Observation     string                   `json:"observation,omitempty"`
	Approval        ApprovalFlag             `json:"approval"`
	Level           int                      `json:"level"`
	Actor           Actor                    `json:"actor"`
	CreatedAt       time.Time                `json:"createdAt"`
	Attachments     []*attachment.Attachment `json:"attachments,omitempty"`
	RespondsTo      string                   `json:"respondsTo,omitempty"`
}

// OpinionKind tells what an opinion record documents.
type OpinionKind string

const (
	OpinionComment            OpinionKind = "COMMENT"
	OpinionConferenceApproval OpinionKind = "CONFERENCE_APPROVAL"
	OpinionAcknowledgment     OpinionKind = "ACKNOWLEDGMENT"
	OpinionDelayJustification OpinionKind = "DELAY_JUSTIFICATION"
	OpinionAttachment         OpinionKind = "ATTACHMENT"
	OpinionDetachment         OpinionKind = "DETACHMENT"
	OpinionEdit               OpinionKind = "EDIT"
)

// OpinionRecord (parecer) is commentary tied to a status snapshot that does not
// route the obligation.
type OpinionRecord struct {
	ID           string                   `json:"id"`
	ObligationID string                   `json:"obligationId"`
	Sequence     int64                    `json:"sequence"`
	Status       status.Code              `json:"status"`
	Kind         OpinionKind              `json:"kind"`
	Observation  string                   `json:"observation,omitempty"`
	Actor        Actor                    `json:"actor"`
	CreatedAt    time.Time                `json:"createdAt"`
	Attachments  []*attachment.Attachment `json:"attachments,omitempty"`
}

// Blank reports whether text has no visible content.
func Blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
