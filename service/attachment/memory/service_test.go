package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

func TestService_ByObligation(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a1", ObligationID: "o1", Kind: attachment.EvidenceFile}))
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a2", ObligationID: "o1", Kind: "C"}))
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a3", ObligationID: "o2", Kind: attachment.EvidenceLink}))
	assert.ErrorIs(t, svc.Save(ctx, &attachment.Attachment{}), dao.ErrInvalidID)

	tests := []struct {
		name       string
		obligation string
		kinds      []attachment.Kind
		expect     []string
	}{
		{name: "all of obligation", obligation: "o1", expect: []string{"a1", "a2"}},
		{name: "legacy code classified", obligation: "o1", kinds: []attachment.Kind{attachment.Correspondence}, expect: []string{"a2"}},
		{name: "evidence kinds", obligation: "o2", kinds: []attachment.Kind{attachment.EvidenceFile, attachment.EvidenceLink}, expect: []string{"a3"}},
		{name: "none", obligation: "o3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			list, err := svc.ByObligation(ctx, tc.obligation, tc.kinds...)
			require.NoError(t, err)
			var ids []string
			for _, a := range list {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tc.expect, ids)
		})
	}

	require.NoError(t, svc.Delete(ctx, "a1"))
	list, err := svc.ByObligation(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
