package approval

import (
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
)

// Reason texts shared with the permission evaluator.
const (
	ReasonNotOnRoster     = "Only the designated signers can sign at this stage"
	ReasonAlreadyApproved = "You have already approved at this signature level"
	ReasonEmptyRoster     = "No signers are designated for this obligation"
)

// Quorum is the vote state of one director signature level.
type Quorum struct {
	Level    int
	Signers  []string
	votes    []*Vote
	approved map[string]bool
	rejected bool
}

// NewQuorum builds the state of level from the transitions written at the
// director signature status.
func NewQuorum(signers []string, level int, history model.History) *Quorum {
	ret := &Quorum{Level: level, Signers: dedupe(signers), approved: map[string]bool{}}
	for _, record := range history.AtLevel(status.EmAssinaturaDiretoria, level) {
		ret.add(&Vote{
			SignerID:  record.Actor.ResponsibleID,
			Decision:  record.Approval.Normalize(),
			Level:     record.Level,
			DecidedAt: record.CreatedAt,
		})
	}
	return ret
}

func (q *Quorum) add(vote *Vote) {
	q.votes = append(q.votes, vote)
	switch vote.Decision {
	case model.ApprovalApproved:
		q.approved[vote.SignerID] = true
	case model.ApprovalRejected:
		q.rejected = true
	}
}

// OnRoster reports whether id may sign.
func (q *Quorum) OnRoster(id string) bool {
	for _, signer := range q.Signers {
		if signer == id {
			return true
		}
	}
	return false
}

// HasApproved reports whether id already approved at this level.
func (q *Quorum) HasApproved(id string) bool {
	return q.approved[id]
}

// Approved returns the signers that approved, in roster order.
func (q *Quorum) Approved() []string {
	var ret []string
	for _, signer := range q.Signers {
		if q.approved[signer] {
			ret = append(ret, signer)
		}
	}
	return ret
}

// Remaining returns the signers that still have to approve.
func (q *Quorum) Remaining() []string {
	var ret []string
	for _, signer := range q.Signers {
		if !q.approved[signer] {
			ret = append(ret, signer)
		}
	}
	return ret
}

// Votes returns the votes cast at this level.
func (q *Quorum) Votes() []*Vote {
	return q.votes
}

// Rejected reports whether the level was rejected.
func (q *Quorum) Rejected() bool {
	return q.rejected
}

// Complete reports whether every roster signer approved.
func (q *Quorum) Complete() bool {
	return len(q.Signers) > 0 && !q.rejected && len(q.Remaining()) == 0
}

// Eligible returns the reasons that prevent id from voting, nil when allowed.
func (q *Quorum) Eligible(id string) []string {
	if len(q.Signers) == 0 {
		return []string{ReasonEmptyRoster}
	}
	if !q.OnRoster(id) {
		return []string{ReasonNotOnRoster}
	}
	if q.HasApproved(id) {
		return []string{ReasonAlreadyApproved}
	}
	return nil
}

// Cast applies a vote and returns the resulting outcome. The quorum is left
// untouched when the vote is refused.
func (q *Quorum) Cast(vote *Vote) (Outcome, error) {
	const action = "approve"
	if len(q.Signers) == 0 {
		return "", types.NewPreconditionFailedError(action, ReasonEmptyRoster)
	}
	if !q.OnRoster(vote.SignerID) {
		return "", types.NewPermissionDeniedError(action, ReasonNotOnRoster)
	}
	if q.HasApproved(vote.SignerID) {
		return "", types.NewPreconditionFailedError(action, ReasonAlreadyApproved)
	}
	switch vote.Decision {
	case model.ApprovalApproved, model.ApprovalRejected:
	default:
		return "", types.NewValidationError(action, "A director vote must approve or reject")
	}
	vote.Level = q.Level
	q.add(vote)
	return q.Outcome(), nil
}

// Outcome returns the current round state.
func (q *Quorum) Outcome() Outcome {
	switch {
	case q.rejected:
		return OutcomeRejected
	case q.Complete():
		return OutcomeComplete
	}
	return OutcomePending
}

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	var ret []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ret = append(ret, id)
	}
	return ret
}
