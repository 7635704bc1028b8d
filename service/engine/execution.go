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

// AttachEvidence adds evidence files or links. The first evidence on a not
// started or pending obligation starts execution (EM_ANDAMENTO).
func (s *Service) AttachEvidence(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.AttachEvidence)
	}
	return s.execute(ctx, permission.AttachEvidence, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, true, attachment.EvidenceFile, attachment.EvidenceLink)
		if err := s.check(ctx, tx, permission.AttachEvidence); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		if tx.current.Status.Is(status.NaoIniciado, status.Pendente) {
			tx.route(status.EmAndamento, cmd.Observation, model.ApprovalNone)
			return nil
		}
		tx.note(model.OpinionAttachment, cmd.Observation, tx.added)
		return nil
	})
}

// AttachOther adds supporting documents of kind OTHER.
func (s *Service) AttachOther(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.AttachOther)
	}
	return s.execute(ctx, permission.AttachOther, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, true, attachment.Other)
		if err := s.check(ctx, tx, permission.AttachOther); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		tx.note(model.OpinionAttachment, cmd.Observation, tx.added)
		return nil
	})
}

// Comment records an opinion, optionally with OTHER documents.
func (s *Service) Comment(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.Comment)
	}
	return s.execute(ctx, permission.Comment, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, false, attachment.Other)
		if err := s.check(ctx, tx, permission.Comment); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		if model.Blank(cmd.Observation) {
			return types.NewValidationError(tx.action, ReasonBlankObservation)
		}
		tx.note(model.OpinionComment, cmd.Observation, tx.added)
		return nil
	})
}

// detachAction maps an attachment kind to the action that governs it.
func detachAction(kind attachment.Kind) permission.Action {
	switch kind {
	case attachment.EvidenceFile, attachment.EvidenceLink:
		return permission.AttachEvidence
	case attachment.Correspondence:
		return permission.AttachCorrespondence
	case attachment.Protocol:
		return permission.Edit
	}
	return permission.AttachOther
}

// DetachAttachment removes an attachment; the same rule that allows adding
// a document of that kind allows removing it.
func (s *Service) DetachAttachment(ctx context.Context, cmd *DetachCommand) (*model.Obligation, error) {
	const action = permission.Action("detachAttachment")
	if cmd == nil {
		return nil, missingCommand(action)
	}
	return s.execute(ctx, action, cmd.Target, func(ctx context.Context, tx *txn) error {
		var target *attachment.Attachment
		for _, a := range tx.existing {
			if a.ID == cmd.AttachmentID {
				target = a
				break
			}
		}
		if target == nil {
			return types.NewNotFoundError("attachment", cmd.AttachmentID)
		}
		if err := s.check(ctx, tx, detachAction(attachment.Classify(target))); err != nil {
			return err
		}
		tx.removed = append(tx.removed, target)
		observation := cmd.Observation
		if model.Blank(observation) {
			observation = "Removed " + strings.TrimSpace(target.Name)
		}
		tx.note(model.OpinionDetachment, observation, tx.removed)
		return nil
	})
}

// JustifyDelay stores the delay justification of an overdue obligation. The
// status is unchanged.
func (s *Service) JustifyDelay(ctx context.Context, cmd *JustifyDelayCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.JustifyDelay)
	}
	return s.execute(ctx, permission.JustifyDelay, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.JustifyDelay); err != nil {
			return err
		}
		if model.Blank(cmd.Justification) {
			return types.NewValidationError(tx.action, ReasonBlankJustification)
		}
		now := tx.now
		tx.next.DelayJustification = strings.TrimSpace(cmd.Justification)
		tx.next.DelayJustifiedAt = &now
		tx.next.DelayJustifiedBy = tx.actor.ID
		tx.note(model.OpinionDelayJustification, cmd.Justification, nil)
		return nil
	})
}

// SendToAnalysis hands an executed obligation to regulatory validation and
// stamps the sender as technical responsible. Evidence sent along counts
// towards the evidence requirement.
func (s *Service) SendToAnalysis(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.SendToAnalysis)
	}
	return s.execute(ctx, permission.SendToAnalysis, cmd.Target, func(ctx context.Context, tx *txn) error {
		staged := tx.stage(cmd.Attachments, false, attachment.EvidenceFile, attachment.EvidenceLink, attachment.Other)
		if err := s.check(ctx, tx, permission.SendToAnalysis); err != nil {
			return err
		}
		if staged != nil {
			return staged
		}
		tx.next.TechnicalResponsibleID = tx.actor.ID
		tx.next.SentToArea = false
		tx.next.ConferenceApproved = false
		tx.route(status.EmValidacaoRegulatorio, cmd.Observation, model.ApprovalNone)
		return nil
	})
}
