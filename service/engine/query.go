package engine

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/planner"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

// Get returns an obligation.
func (s *Service) Get(ctx context.Context, id string) (*model.Obligation, error) {
	snapshot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return snapshot.Obligation, nil
}

// History returns the transitions and opinions of an obligation in write order.
func (s *Service) History(ctx context.Context, id string) (model.History, error) {
	snapshot, err := s.load(ctx, id)
	if err != nil {
		return model.History{}, err
	}
	return snapshot.History(), nil
}

// Attachments lists the documents of an obligation, optionally by kind.
func (s *Service) Attachments(ctx context.Context, id string, kinds ...attachment.Kind) ([]*attachment.Attachment, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.attachments.ByObligation(ctx, id, kinds...)
}

// List returns obligations matching parameters (Status, AssignedArea, PrincipalID).
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Obligation, error) {
	return s.store.List(ctx, parameters...)
}

// Permissions evaluates every action for the calling actor.
func (s *Service) Permissions(ctx context.Context, id string) (*permission.Set, error) {
	tx, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.openDependents, err = s.openDependents(ctx, id); err != nil {
		return nil, err
	}
	return s.evaluatorFor(ctx).Evaluate(tx.input()), nil
}

// PlanNextAdvance returns the advance routing would take now, nil when the
// obligation is outside the routing chain.
func (s *Service) PlanNextAdvance(ctx context.Context, id string) (*planner.Advance, error) {
	snapshot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return planner.Next(snapshot.Obligation.Status, snapshot.History()), nil
}

// snapshot builds a read only txn for queries.
func (s *Service) snapshot(ctx context.Context, id string) (*txn, error) {
	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, "query", actor, Target{ObligationID: id})
}
