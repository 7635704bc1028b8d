// Package obligation defines persistence for the obligation aggregate and its
// append-only history. Every write is a compare-and-swap on the obligation
// version, so two writers racing on one obligation cannot both succeed.
package obligation

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

// List parameter names.
const (
	ParamStatus       = "Status"
	ParamPrincipalID  = "PrincipalID"
	ParamAssignedArea = "AssignedArea"
)

// Snapshot is an obligation with its full history.
type Snapshot struct {
	Obligation  *model.Obligation         `json:"obligation"`
	Transitions []*model.TransitionRecord `json:"transitions,omitempty"`
	Opinions    []*model.OpinionRecord    `json:"opinions,omitempty"`
}

// History returns the ordered history.
func (s *Snapshot) History() model.History {
	return model.NewHistory(s.Transitions, s.Opinions)
}

// Clone copies the snapshot; records are immutable and shared.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Obligation:  s.Obligation.Clone(),
		Transitions: append([]*model.TransitionRecord(nil), s.Transitions...),
		Opinions:    append([]*model.OpinionRecord(nil), s.Opinions...),
	}
}

// Change is one atomic write: the new obligation state plus at most one
// transition and one opinion record.
type Change struct {
	Obligation      *model.Obligation
	ExpectedVersion int64
	Transition      *model.TransitionRecord
	Opinion         *model.OpinionRecord
}

// Store persists obligations.
type Store interface {
	// Create stores a new obligation, dao.ErrExists when the id is taken.
	Create(ctx context.Context, o *model.Obligation) error
	// Load returns the snapshot, dao.ErrNotFound when missing.
	Load(ctx context.Context, id string) (*Snapshot, error)
	// Commit applies change when the stored version equals
	// change.ExpectedVersion, dao.ErrConflict otherwise.
	Commit(ctx context.Context, change *Change) error
	// Delete removes the obligation and its history under the same version check.
	Delete(ctx context.Context, id string, expectedVersion int64) error
	// List returns obligations matching every parameter.
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Obligation, error)
}

// Fields projects o for parameter matching.
func Fields(o *model.Obligation) map[string]string {
	return map[string]string{
		ParamStatus:       o.Status.Key(),
		ParamPrincipalID:  o.PrincipalID,
		ParamAssignedArea: o.AssignedArea,
	}
}

// Validate checks a change before it is applied.
func (c *Change) Validate() error {
	if c == nil || c.Obligation == nil {
		return dao.ErrNilEntity
	}
	if c.Obligation.ID == "" {
		return dao.ErrInvalidID
	}
	return nil
}
