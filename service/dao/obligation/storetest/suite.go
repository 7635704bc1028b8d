// Package storetest holds the behaviour every obligation.Store must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
)

var created = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func newObligation(id, principal string) *model.Obligation {
	return &model.Obligation{
		ID:             id,
		Title:          "Quarterly report " + id,
		Status:         status.NaoIniciado,
		AssignedArea:   "LEGAL",
		Classification: model.Simple,
		PrincipalID:    principal,
		Version:        1,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// Run exercises store against the obligation.Store contract.
func Run(t *testing.T, factory func(t *testing.T) obligation.Store) {
	t.Run("create and load", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t)
		require.NoError(t, store.Create(ctx, newObligation("o1", "")))
		assert.ErrorIs(t, store.Create(ctx, newObligation("o1", "")), dao.ErrExists)

		snapshot, err := store.Load(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, "Quarterly report o1", snapshot.Obligation.Title)
		assert.Equal(t, int64(1), snapshot.Obligation.Version)
		assert.True(t, snapshot.History().Empty())

		_, err = store.Load(ctx, "missing")
		assert.ErrorIs(t, err, dao.ErrNotFound)
	})

	t.Run("commit appends records", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t)
		require.NoError(t, store.Create(ctx, newObligation("o1", "")))

		next := newObligation("o1", "")
		next.Status = status.EmAndamento
		next.Version = 2
		require.NoError(t, store.Commit(ctx, &obligation.Change{
			Obligation:      next,
			ExpectedVersion: 1,
			Transition: &model.TransitionRecord{
				ID: "t1", ObligationID: "o1", Sequence: 1,
				Status: status.NaoIniciado, TargetStatus: status.EmAndamento,
				Approval: model.ApprovalNone, Actor: model.Actor{ResponsibleID: "u1", Area: "LEGAL"},
				CreatedAt: created,
			},
		}))

		next = next.Clone()
		next.Version = 3
		require.NoError(t, store.Commit(ctx, &obligation.Change{
			Obligation:      next,
			ExpectedVersion: 2,
			Opinion: &model.OpinionRecord{
				ID: "p1", ObligationID: "o1", Sequence: 2, Status: status.EmAndamento,
				Kind: model.OpinionComment, Observation: "started", CreatedAt: created,
			},
		}))

		snapshot, err := store.Load(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, status.EmAndamento, snapshot.Obligation.Status)
		assert.Equal(t, int64(3), snapshot.Obligation.Version)
		history := snapshot.History()
		require.Len(t, history.Transitions, 1)
		require.Len(t, history.Opinions, 1)
		assert.Equal(t, "t1", history.Transitions[0].ID)
		assert.Equal(t, status.EmAndamento, history.Transitions[0].TargetStatus)
		assert.Equal(t, "u1", history.Transitions[0].Actor.ResponsibleID)
		assert.Equal(t, model.OpinionComment, history.Opinions[0].Kind)
		assert.Equal(t, int64(3), history.NextSequence())
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t)
		require.NoError(t, store.Create(ctx, newObligation("o1", "")))

		stale := newObligation("o1", "")
		stale.Version = 3
		err := store.Commit(ctx, &obligation.Change{Obligation: stale, ExpectedVersion: 2,
			Transition: &model.TransitionRecord{ID: "t1", ObligationID: "o1", Sequence: 1}})
		assert.ErrorIs(t, err, dao.ErrConflict)

		snapshot, err := store.Load(ctx, "o1")
		require.NoError(t, err)
		assert.Empty(t, snapshot.Transitions)

		missing := newObligation("o2", "")
		assert.ErrorIs(t, store.Commit(ctx, &obligation.Change{Obligation: missing, ExpectedVersion: 1}), dao.ErrNotFound)
	})

	t.Run("concurrent commits on one version", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t)
		require.NoError(t, store.Create(ctx, newObligation("o1", "")))

		const writers = 4
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				next := newObligation("o1", "")
				next.Version = 2
				errs[i] = store.Commit(ctx, &obligation.Change{
					Obligation:      next,
					ExpectedVersion: 1,
					Transition:      &model.TransitionRecord{ID: string(rune('a' + i)), ObligationID: "o1", Sequence: 1},
				})
			}(i)
		}
		wg.Wait()
		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, dao.ErrConflict)
		}
		assert.Equal(t, 1, succeeded)
		snapshot, err := store.Load(ctx, "o1")
		require.NoError(t, err)
		assert.Len(t, snapshot.Transitions, 1)
	})

	t.Run("list and delete", func(t *testing.T) {
		ctx := context.Background()
		store := factory(t)
		require.NoError(t, store.Create(ctx, newObligation("p1", "")))
		require.NoError(t, store.Create(ctx, newObligation("c1", "p1")))
		require.NoError(t, store.Create(ctx, newObligation("c2", "p1")))

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		children, err := store.List(ctx, dao.NewParameter(obligation.ParamPrincipalID, "p1"))
		require.NoError(t, err)
		assert.Len(t, children, 2)

		started, err := store.List(ctx, dao.NewParameter(obligation.ParamStatus, status.EmAndamento.Key()))
		require.NoError(t, err)
		assert.Empty(t, started)

		assert.ErrorIs(t, store.Delete(ctx, "c1", 5), dao.ErrConflict)
		require.NoError(t, store.Delete(ctx, "c1", 1))
		assert.ErrorIs(t, store.Delete(ctx, "c1", 1), dao.ErrNotFound)
		_, err = store.Load(ctx, "c1")
		assert.ErrorIs(t, err, dao.ErrNotFound)
	})
}
