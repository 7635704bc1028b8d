package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
)

func signature(seq int64, signer string, level int, flag model.ApprovalFlag) *model.TransitionRecord {
	return &model.TransitionRecord{
		Sequence: seq,
		Status:   status.EmAssinaturaDiretoria,
		Level:    level,
		Approval: flag,
		Actor:    model.Actor{ResponsibleID: signer},
	}
}

func TestQuorum_Cast(t *testing.T) {
	q := NewQuorum([]string{"A", "B"}, 1, model.History{})
	assert.Equal(t, OutcomePending, q.Outcome())

	outcome, err := q.Cast(&Vote{SignerID: "A", Decision: model.ApprovalApproved, DecidedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	assert.Equal(t, []string{"A"}, q.Approved())
	assert.Equal(t, []string{"B"}, q.Remaining())

	_, err = q.Cast(&Vote{SignerID: "A", Decision: model.ApprovalApproved})
	assert.ErrorIs(t, err, types.ErrPreconditionFailed)

	_, err = q.Cast(&Vote{SignerID: "C", Decision: model.ApprovalApproved})
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	outcome, err = q.Cast(&Vote{SignerID: "B", Decision: model.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, outcome)
	assert.True(t, q.Complete())
}

func TestQuorum_FromHistory(t *testing.T) {
	history := model.NewHistory([]*model.TransitionRecord{
		signature(1, "A", 1, model.ApprovalApproved),
		signature(2, "B", 1, model.ApprovalRejected),
		signature(3, "A", 2, model.ApprovalApproved),
	}, nil)

	tests := []struct {
		name      string
		signers   []string
		level     int
		approved  []string
		rejected  bool
		eligibleA bool
	}{
		{name: "rejected level", signers: []string{"A", "B"}, level: 1, approved: []string{"A"}, rejected: true},
		{name: "fresh level keeps its own votes", signers: []string{"A", "B"}, level: 2, approved: []string{"A"}},
		{name: "untouched level", signers: []string{"A", "B"}, level: 3, eligibleA: true},
		{name: "roster of three", signers: []string{"A", "B", "C", "A"}, level: 3, eligibleA: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuorum(tc.signers, tc.level, history)
			assert.Equal(t, tc.approved, q.Approved())
			assert.Equal(t, tc.rejected, q.Rejected())
			assert.Equal(t, tc.eligibleA, q.Eligible("A") == nil)
			assert.False(t, q.Complete())
		})
	}
}

func TestQuorum_Eligible(t *testing.T) {
	assert.Equal(t, []string{ReasonEmptyRoster}, NewQuorum(nil, 1, model.History{}).Eligible("A"))
	assert.Equal(t, []string{ReasonNotOnRoster}, NewQuorum([]string{"B"}, 1, model.History{}).Eligible("A"))

	_, err := NewQuorum([]string{"A"}, 1, model.History{}).Cast(&Vote{SignerID: "A", Decision: model.ApprovalNone})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAcknowledged(t *testing.T) {
	assert.True(t, Acknowledged(&model.Obligation{}))
	assert.False(t, Acknowledged(&model.Obligation{AckRequired: true}))
	assert.True(t, PendingAcknowledgment(&model.Obligation{AckRequired: true}))
	assert.True(t, Acknowledged(&model.Obligation{AckRequired: true, AckChecked: true}))
	assert.False(t, Acknowledged(nil))
}
