package engine

import (
	"context"
	"strings"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
)

// RequestAdjustments returns an obligation under validation to its area.
// It goes back to ATRASADA when the deadline already passed.
func (s *Service) RequestAdjustments(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.RequestAdjustments)
	}
	return s.execute(ctx, permission.RequestAdjustments, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, false, attachment.Other)
		if err := s.check(ctx, tx, permission.RequestAdjustments); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		if model.Blank(cmd.Observation) {
			return types.NewValidationError(tx.action, ReasonBlankObservation)
		}
		target := status.EmAndamento
		if tx.current.PastDeadline(tx.now) {
			target = status.Atrasada
		}
		tx.next.SentToArea = true
		tx.route(target, cmd.Observation, model.ApprovalRejected)
		return nil
	})
}

// ApproveConference marks the executed work as checked by regulatory.
func (s *Service) ApproveConference(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.ApproveConference)
	}
	return s.execute(ctx, permission.ApproveConference, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.ApproveConference); err != nil {
			return err
		}
		tx.next.ConferenceApproved = true
		observation := cmd.Observation
		if model.Blank(observation) {
			observation = "Conference approved"
		}
		tx.note(model.OpinionConferenceApproval, observation, nil)
		return nil
	})
}

// AttachCorrespondence adds the response letter once the conference is approved.
func (s *Service) AttachCorrespondence(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.AttachCorrespondence)
	}
	return s.execute(ctx, permission.AttachCorrespondence, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, true, attachment.Correspondence)
		if err := s.check(ctx, tx, permission.AttachCorrespondence); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		tx.note(model.OpinionAttachment, cmd.Observation, tx.added)
		return nil
	})
}

// RouteToApproval enters the routing chain at the regulatory manager stage.
func (s *Service) RouteToApproval(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.RouteToApproval)
	}
	return s.execute(ctx, permission.RouteToApproval, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.RouteToApproval); err != nil {
			return err
		}
		tx.next.AckChecked = false
		tx.route(status.EmAnaliseGerenteRegulatorio, cmd.Observation, model.ApprovalNone)
		return nil
	})
}

// AttachProtocol files the protocol of the answered obligation and concludes
// it. Open conditioned obligations only warn unless the policy enforces them.
func (s *Service) AttachProtocol(ctx context.Context, cmd *ProtocolCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.AttachProtocol)
	}
	return s.execute(ctx, permission.AttachProtocol, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, true, attachment.Protocol)
		if err := s.check(ctx, tx, permission.AttachProtocol); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		now := tx.now
		tx.next.ProtocolRegistry = strings.TrimSpace(cmd.ProtocolRegistry)
		tx.next.ProcessNumber = strings.TrimSpace(cmd.ProcessNumber)
		tx.next.CompletedAt = &now
		tx.route(status.Concluido, cmd.Observation, model.ApprovalNone)
		for _, warning := range tx.warnings {
			s.logger.Warn("obligation concluded with warning", "obligationId", tx.current.ID, "warning", warning)
		}
		return nil
	})
}
