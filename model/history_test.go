package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

func TestHistory_Anchor(t *testing.T) {
	rec := func(seq int64, code status.Code, flag ApprovalFlag) *TransitionRecord {
		return &TransitionRecord{ID: string(rune('a' + seq)), Sequence: seq, Status: code, Approval: flag}
	}

	tests := []struct {
		name     string
		records  []*TransitionRecord
		anchor   status.Code
		current  status.Code
		expectID string
	}{
		{
			name:    "no records",
			anchor:  status.EmAssinaturaDiretoria,
			current: status.EmAprovacao,
		},
		{
			name: "latest anchor wins",
			records: []*TransitionRecord{
				rec(1, status.EmAssinaturaDiretoria, ApprovalApproved),
				rec(2, status.EmAssinaturaDiretoria, ApprovalRejected),
			},
			anchor:   status.EmAssinaturaDiretoria,
			current:  status.EmAprovacao,
			expectID: "c",
		},
		{
			name: "anchor consumed by later action at current status",
			records: []*TransitionRecord{
				rec(1, status.EmAssinaturaDiretoria, ApprovalRejected),
				rec(2, status.EmAprovacao, ApprovalNone),
				rec(3, status.EmAnaliseGerenteRegulatorio, ApprovalNone),
			},
			anchor:  status.EmAssinaturaDiretoria,
			current: status.EmAprovacao,
		},
		{
			name: "out of order input sorted by sequence",
			records: []*TransitionRecord{
				rec(3, status.EmAprovacao, ApprovalRejected),
				rec(1, status.EmAprovacao, ApprovalApproved),
			},
			anchor:   status.EmAprovacao,
			current:  status.AnaliseRegulatoria,
			expectID: "d",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHistory(tc.records, nil)
			actual := h.Anchor(tc.anchor, tc.current)
			if tc.expectID == "" {
				assert.Nil(t, actual)
				return
			}
			if assert.NotNil(t, actual) {
				assert.Equal(t, tc.expectID, actual.ID)
			}
		})
	}
}

func TestHistory_Queries(t *testing.T) {
	h := NewHistory([]*TransitionRecord{
		{ID: "1", Sequence: 1, Status: status.EmAssinaturaDiretoria, Level: 1},
		{ID: "2", Sequence: 2, Status: status.EmAssinaturaDiretoria, Level: 2},
		{ID: "3", Sequence: 4, Status: status.EmAprovacao, Level: 2},
	}, []*OpinionRecord{{ID: "o", Sequence: 3}})

	assert.False(t, h.Empty())
	assert.Equal(t, "3", h.Latest().ID)
	assert.Equal(t, "2", h.LatestAt(status.EmAssinaturaDiretoria).ID)
	assert.Len(t, h.At(status.EmAssinaturaDiretoria), 2)
	assert.Len(t, h.AtLevel(status.EmAssinaturaDiretoria, 2), 1)
	assert.Nil(t, h.LatestAt(status.Concluido))
	assert.Equal(t, int64(5), h.NextSequence())
	assert.Equal(t, int64(1), History{}.NextSequence())
}

func TestParseApprovalFlag(t *testing.T) {
	flag, err := ParseApprovalFlag("s")
	assert.NoError(t, err)
	assert.Equal(t, ApprovalApproved, flag)

	flag, err = ParseApprovalFlag("")
	assert.NoError(t, err)
	assert.Equal(t, ApprovalNone, flag)

	_, err = ParseApprovalFlag("maybe")
	assert.Error(t, err)
}
