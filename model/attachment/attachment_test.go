package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    *Attachment
		expected Kind
	}{
		{name: "evidence file", input: &Attachment{Kind: EvidenceFile}, expected: EvidenceFile},
		{name: "lower case link", input: &Attachment{Kind: "evidence_link"}, expected: EvidenceLink},
		{name: "legacy correspondence code", input: &Attachment{Kind: "C"}, expected: Correspondence},
		{name: "legacy protocol code", input: &Attachment{Kind: "p"}, expected: Protocol},
		{name: "unknown kind", input: &Attachment{Kind: "SPREADSHEET"}, expected: Other},
		{name: "nil attachment", input: nil, expected: Other},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.input))
		})
	}
}

func TestPredicates(t *testing.T) {
	set := []*Attachment{
		{ID: "1", Kind: Other},
		{ID: "2", Kind: "L"},
		{ID: "3", Kind: Correspondence},
	}
	assert.True(t, HasEvidence(set))
	assert.True(t, HasCorrespondence(set))
	assert.False(t, HasKind(set, Protocol))
	assert.False(t, HasEvidence(set[:1]))
	assert.False(t, HasEvidence(nil))

	filtered := Filter(set, EvidenceFile, EvidenceLink)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].ID)
	assert.Len(t, Filter(set), 3)
}
