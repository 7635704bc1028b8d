package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/idgen"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/tracing"
)

const actionCreate = "create"

// Create registers a new obligation in NAO_INICIADO or PENDENTE. Only
// administrators and system managers may create obligations.
func (s *Service) Create(ctx context.Context, cmd *CreateCommand) (ret *model.Obligation, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine."+actionCreate, tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Manager() {
		return nil, types.NewPermissionDeniedError(actionCreate, permission.ReasonManagerOnly)
	}
	if cmd == nil || cmd.Obligation == nil {
		return nil, types.NewValidationError(actionCreate, ReasonMissingCommand)
	}
	o := cmd.Obligation.Clone()
	if o.ID == "" {
		o.ID = idgen.New()
	}
	o.AssignedArea = strings.TrimSpace(o.AssignedArea)
	if o.AssignedArea == "" {
		return nil, types.NewValidationError(actionCreate, ReasonAssignedAreaRequired)
	}
	if o.Status == status.Unknown {
		o.Status = status.NaoIniciado
	}
	if !o.Status.Is(status.NaoIniciado, status.Pendente) {
		return nil, types.NewValidationError(actionCreate, ReasonInitialStatus)
	}
	switch {
	case o.PrincipalID == o.ID:
		return nil, types.NewValidationError(actionCreate, ReasonSelfPrincipal)
	case o.PrincipalID != "":
		o.Classification = model.Conditioned
		if _, err = s.load(ctx, o.PrincipalID); err != nil {
			return nil, err
		}
	case o.Classification == model.Conditioned:
		return nil, types.NewValidationError(actionCreate, ReasonPrincipalRequired)
	default:
		o.Classification = model.Simple
	}

	now := clock.Now()
	o.Version = 1
	o.CreatedAt = now
	o.UpdatedAt = now
	o.SentToArea = false
	o.ConferenceApproved = false
	o.AckChecked = false
	o.SignatureLevel = 0
	o.CompletedAt = nil
	o.TechnicalResponsibleID = ""
	if err = s.store.Create(ctx, o); err != nil {
		if errors.Is(err, dao.ErrExists) {
			return nil, types.NewValidationError(actionCreate, ReasonDuplicateID)
		}
		return nil, err
	}
	s.notify(ctx, &txn{action: actionCreate, actor: actor, next: o})
	s.logger.Info("obligation created", "obligationId", o.ID, "status", o.Status.Key(), "assignedArea", o.AssignedArea, "actor", actor.ID)
	return o.Clone(), nil
}

// Update edits descriptive fields and records an EDIT opinion.
func (s *Service) Update(ctx context.Context, cmd *UpdateCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.Edit)
	}
	return s.execute(ctx, permission.Edit, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.Edit); err != nil {
			return err
		}
		var changed []string
		if cmd.Title != nil {
			tx.next.Title = strings.TrimSpace(*cmd.Title)
			changed = append(changed, "title")
		}
		if cmd.Criticality != nil {
			tx.next.Criticality = strings.TrimSpace(*cmd.Criticality)
			changed = append(changed, "criticality")
		}
		if cmd.StartDate != nil {
			tx.next.StartDate = cmd.StartDate
			changed = append(changed, "start date")
		}
		if cmd.EndDate != nil {
			tx.next.EndDate = cmd.EndDate
			changed = append(changed, "end date")
		}
		if cmd.Deadline != nil {
			tx.next.Deadline = cmd.Deadline
			changed = append(changed, "deadline")
		}
		if cmd.ConditioningAreas != nil {
			tx.next.ConditioningAreas = append([]string(nil), (*cmd.ConditioningAreas)...)
			changed = append(changed, "conditioning areas")
		}
		if cmd.AckRequired != nil {
			tx.next.AckRequired = *cmd.AckRequired
			changed = append(changed, "acknowledgment requirement")
		}
		if len(changed) == 0 {
			return types.NewValidationError(tx.action, ReasonNothingToUpdate)
		}
		observation := cmd.Observation
		if model.Blank(observation) {
			observation = "Updated " + strings.Join(changed, ", ")
		}
		tx.note(model.OpinionEdit, observation, nil)
		return nil
	})
}

// Delete removes an obligation that never left NAO_INICIADO/PENDENTE,
// together with its attachments.
func (s *Service) Delete(ctx context.Context, target Target) error {
	_, err := s.execute(ctx, permission.Delete, target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.Delete); err != nil {
			return err
		}
		tx.deleted = true
		return nil
	})
	return err
}

// SendToArea hands a not started obligation to its assigned area (PENDENTE).
func (s *Service) SendToArea(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.SendToArea)
	}
	return s.execute(ctx, permission.SendToArea, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.SendToArea); err != nil {
			return err
		}
		tx.next.SentToArea = true
		tx.route(status.Pendente, cmd.Observation, model.ApprovalNone)
		return nil
	})
}

// MarkOverdue moves a running obligation whose deadline passed to ATRASADA.
// Detection is external; this only applies the status.
func (s *Service) MarkOverdue(ctx context.Context, cmd *NoteCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.MarkOverdue)
	}
	return s.execute(ctx, permission.MarkOverdue, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.MarkOverdue); err != nil {
			return err
		}
		tx.route(status.Atrasada, cmd.Observation, model.ApprovalNone)
		return nil
	})
}

// MarkNotApplicable suspends an open obligation. The move is irreversible.
func (s *Service) MarkNotApplicable(ctx context.Context, cmd *NotApplicableCommand) (*model.Obligation, error) {
	if cmd == nil {
		return nil, missingCommand(permission.MarkNotApplicable)
	}
	return s.execute(ctx, permission.MarkNotApplicable, cmd.Target, func(ctx context.Context, tx *txn) error {
		if err := s.check(ctx, tx, permission.MarkNotApplicable); err != nil {
			return err
		}
		if model.Blank(cmd.Justification) {
			return types.NewValidationError(tx.action, ReasonBlankJustification)
		}
		tx.next.NotApplicableReason = strings.TrimSpace(cmd.Justification)
		tx.route(status.NaoAplicavelSuspensa, cmd.Justification, model.ApprovalNone)
		return nil
	})
}
