package engine

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/planner"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/approval"
)

// Acknowledge checks the acknowledgment box at the regulatory manager stage.
func (s *Service) Acknowledge(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.Acknowledge)
	}
	return s.execute(ctx, permission.Acknowledge, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.Acknowledge); err != nil {
			return err
		}
		tx.next.AckChecked = true
		observation := cmd.Observation
		if model.Blank(observation) {
			observation = "Acknowledged"
		}
		tx.note(model.OpinionAcknowledgment, observation, nil)
		return nil
	})
}

// Approve is AdvanceRouting with an APPROVED decision.
func (s *Service) Approve(ctx context.Context, cmd *AdvanceCommand) (*model.Obligation, error) {
	return s.decide(ctx, cmd, model.ApprovalApproved)
}

// Reject is AdvanceRouting with a REJECTED decision.
func (s *Service) Reject(ctx context.Context, cmd *AdvanceCommand) (*model.Obligation, error) {
	return s.decide(ctx, cmd, model.ApprovalRejected)
}

func (s *Service) decide(ctx context.Context, cmd *AdvanceCommand, flag model.ApprovalFlag) (*model.Obligation, error) {
	if cmd == nil {
		if flag == model.ApprovalRejected {
			return nil, missingCommand(permission.Reject)
		}
		return nil, missingCommand(permission.Approve)
	}
	clone := *cmd
	clone.Approval = flag
	return s.AdvanceRouting(ctx, &clone)
}

// routingAction picks the permission rule for a routing decision.
func routingAction(current status.Code, flag model.ApprovalFlag) permission.Action {
	switch {
	case flag == model.ApprovalRejected:
		return permission.Reject
	case flag == model.ApprovalApproved && current.Is(status.EmAprovacao, status.EmAssinaturaDiretoria):
		return permission.Approve
	}
	return permission.AdvanceRouting
}

// AdvanceRouting moves an obligation one step along the approval chain. At
// the director signature stage each call is one vote and the obligation only
// leaves once every designated signer approved.
func (s *Service) AdvanceRouting(ctx context.Context, cmd *AdvanceCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.AdvanceRouting)
	}
	switch cmd.Approval.Normalize() {
	case model.ApprovalNone, model.ApprovalApproved, model.ApprovalRejected:
	default:
		return nil, types.NewValidationError(string(permission.AdvanceRouting), ReasonUnknownApproval)
	}
	return s.execute(ctx, permission.AdvanceRouting, cmd.Target, func(ctx context.Context, tx *txn) error {
		flag := cmd.Approval.Normalize()
		action := routingAction(tx.current.Status, flag)
		tx.action = string(action)
		staged := tx.stage(cmd.Attachments, false, attachment.Other, attachment.Correspondence)
		if err := s.check(ctx, tx, action); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		if model.Blank(cmd.Observation) {
			return types.NewValidationError(tx.action, ReasonBlankObservation)
		}
		if tx.current.Status == status.EmAssinaturaDiretoria {
			return s.vote(tx, cmd.Observation, flag)
		}
		advance := planner.Plan(tx.current.Status, tx.history, flag)
		if advance == nil {
			return types.NewPreconditionFailedError(tx.action, permission.ReasonNotRoutable)
		}
		switch advance.Target {
		case status.EmAssinaturaDiretoria:
			tx.next.SignatureLevel = tx.current.SignatureLevel + 1
		case status.EmAnaliseGerenteRegulatorio:
			tx.next.AckChecked = false
		}
		tx.label = advance.Label
		tx.route(advance.Target, cmd.Observation, flag)
		return nil
	})
}

// vote records one director decision. The record stays at the signature
// status until the round completes or is rejected.
func (s *Service) vote(tx *txn, observation string, flag model.ApprovalFlag) error {
	if flag == model.ApprovalNone {
		flag = model.ApprovalApproved
	}
	quorum := approval.NewQuorum(tx.signers, tx.current.SignatureLevel, tx.history)
	outcome, err := quorum.Cast(&approval.Vote{SignerID: tx.actor.ID, Decision: flag, DecidedAt: tx.now})
	if err != nil {
		return err
	}
	target := status.EmAssinaturaDiretoria
	switch outcome {
	case approval.OutcomeComplete:
		advance := planner.Next(tx.current.Status, tx.history)
		target, tx.label = advance.Target, advance.Label
	case approval.OutcomeRejected:
		advance := planner.Reject(tx.current.Status)
		target, tx.label = advance.Target, advance.Label
	}
	record := tx.route(target, observation, flag)
	record.Level = tx.current.SignatureLevel
	s.logger.Debug("director vote recorded", "obligationId", tx.current.ID, "signer", tx.actor.ID,
		"level", record.Level, "decision", flag, "outcome", outcome)
	return nil
}
