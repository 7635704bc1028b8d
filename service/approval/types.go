package approval

import (
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
)

// Outcome is the state of a round after a vote.
type Outcome string

const (
	OutcomePending  Outcome = "PENDING"  // more approvals are required
	OutcomeComplete Outcome = "COMPLETE" // every signer approved
	OutcomeRejected Outcome = "REJECTED" // a signer rejected the round
)

// Vote is one signer decision at a level.
type Vote struct {
	SignerID  string             `json:"signerId"`
	Decision  model.ApprovalFlag `json:"decision"`
	Level     int                `json:"level"`
	DecidedAt time.Time          `json:"decidedAt"`
}

// Approved reports whether the vote approves.
func (v *Vote) Approved() bool {
	return v.Decision == model.ApprovalApproved
}
