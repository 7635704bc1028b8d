package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
)

func TestActor_InArea(t *testing.T) {
	actor := &Actor{ID: "u1", Role: role.Executor, Areas: []string{"LEGAL", "TAX"}}
	assert.True(t, actor.InArea("TAX"))
	assert.False(t, actor.InArea("FINANCE"))
	assert.False(t, actor.InArea(""))
	assert.True(t, actor.InAnyArea([]string{"FINANCE", "LEGAL"}))
	assert.False(t, actor.InAnyArea(nil))

	var nilActor *Actor
	assert.False(t, nilActor.InArea("LEGAL"))
}

func TestProviders(t *testing.T) {
	ctx := context.Background()
	_, err := ContextProvider{}.Actor(ctx)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	actor := &Actor{ID: "u1", Role: role.Administrator}
	got, err := ContextProvider{}.Actor(WithActor(ctx, actor))
	require.NoError(t, err)
	assert.Same(t, actor, got)

	static := NewStatic(&Actor{ID: "cli", Role: role.SystemManager})
	got, err = static.Actor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cli", got.ID)

	got, err = static.Actor(WithActor(ctx, actor))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = NewStatic(nil).Actor(ctx)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
}
