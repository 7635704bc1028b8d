package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	actual, err := Parse(" signer_validator ")
	assert.NoError(t, err)
	assert.Equal(t, SignerValidator, actual)

	_, err = Parse("ROOT")
	assert.Error(t, err)
}

func TestRole_Tiers(t *testing.T) {
	tests := []struct {
		role     Role
		executor bool
		elevated bool
		manager  bool
	}{
		{role: Administrator, elevated: true, manager: true},
		{role: SystemManager, elevated: true, manager: true},
		{role: SignerValidator, elevated: true},
		{role: AdvancedExecutor, executor: true},
		{role: Executor, executor: true},
		{role: RestrictedExecutor, executor: true},
		{role: Viewer},
	}
	for _, tc := range tests {
		t.Run(tc.role.String(), func(t *testing.T) {
			assert.Equal(t, tc.executor, tc.role.Executor())
			assert.Equal(t, tc.elevated, tc.role.Elevated())
			assert.Equal(t, tc.manager, tc.role.Manager())
		})
	}
}
