package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/idgen"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/directory"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/event"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/lock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/tracing"
)

// Validation reasons.
const (
	ReasonMissingCommand       = "The request is empty"
	ReasonMissingID            = "An obligation id is required"
	ReasonBlankObservation     = "An observation is required"
	ReasonBlankJustification   = "A justification is required"
	ReasonNoAttachments        = "Attach at least one document"
	ReasonAssignedAreaRequired = "An assigned area is required"
	ReasonPrincipalRequired    = "A conditioned obligation requires a principal obligation"
	ReasonSelfPrincipal        = "An obligation cannot condition itself"
	ReasonInitialStatus        = "New obligations start as not started or pending"
	ReasonDuplicateID          = "An obligation with this id already exists"
	ReasonNothingToUpdate      = "Nothing to update"
	ReasonUnknownApproval      = "The approval flag must be NONE, APPROVED or REJECTED"
)

// Notification is published after every committed change.
type Notification struct {
	Obligation *model.Obligation       `json:"obligation"`
	Transition *model.TransitionRecord `json:"transition,omitempty"`
	Opinion    *model.OpinionRecord    `json:"opinion,omitempty"`
	Label      string                  `json:"label,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Service is the obligation transition engine.
type Service struct {
	store       obligation.Store
	attachments attachments.Store
	directory   directory.Directory
	identity    identity.Provider
	locker      lock.Locker
	evaluator   *permission.Evaluator
	events      *event.Service
	publisher   *event.Publisher[Notification]
	logger      *slog.Logger
}

// New creates an engine. A store and an attachment store are required; the
// remaining collaborators default to in-process implementations.
func New(options ...Option) (*Service, error) {
	ret := &Service{
		directory: directory.New(nil, nil),
		identity:  identity.ContextProvider{},
		locker:    lock.NewMemory(),
		evaluator: permission.New(nil),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.store == nil {
		return nil, fmt.Errorf("obligation store was nil")
	}
	if ret.attachments == nil {
		return nil, fmt.Errorf("attachment store was nil")
	}
	if ret.events != nil {
		publisher, err := event.PublisherOf[Notification](ret.events)
		if err != nil {
			return nil, fmt.Errorf("failed to create notification publisher: %w", err)
		}
		ret.publisher = publisher
	}
	return ret, nil
}

// txn is the working state of one operation.
type txn struct {
	action         string
	actor          *identity.Actor
	current        *model.Obligation
	next           *model.Obligation
	history        model.History
	existing       []*attachment.Attachment
	signers        []string
	openDependents int
	now            time.Time

	added      []*attachment.Attachment
	removed    []*attachment.Attachment
	transition *model.TransitionRecord
	opinion    *model.OpinionRecord
	deleted    bool
	label      string
	warnings   []string
	records    int64
}

func (t *txn) input() *permission.Input {
	all := make([]*attachment.Attachment, 0, len(t.existing)+len(t.added))
	all = append(all, t.existing...)
	all = append(all, t.added...)
	return &permission.Input{
		Obligation: t.current,
		Actor: permission.Actor{
			ID:                 t.actor.ID,
			Role:               t.actor.Role,
			InAssignedArea:     t.actor.InArea(t.current.AssignedArea),
			InConditioningArea: t.actor.InAnyArea(t.current.ConditioningAreas),
		},
		Signers:        t.signers,
		Attachments:    all,
		History:        t.history,
		OpenDependents: t.openDependents,
		Now:            t.now,
	}
}

func (t *txn) nextSequence() int64 {
	t.records++
	return t.history.NextSequence() + t.records - 1
}

func (t *txn) recordActor() model.Actor {
	ret := model.Actor{ResponsibleID: t.actor.ID}
	switch {
	case t.current != nil && t.actor.InArea(t.current.AssignedArea):
		ret.Area = t.current.AssignedArea
	case len(t.actor.Areas) > 0:
		ret.Area = t.actor.Areas[0]
	}
	return ret
}

// route moves the obligation to target and records the transition.
func (t *txn) route(target status.Code, observation string, flag model.ApprovalFlag) *model.TransitionRecord {
	actor := t.recordActor()
	record := &model.TransitionRecord{
		ID:           idgen.New(),
		ObligationID: t.current.ID,
		Sequence:     t.nextSequence(),
		Status:       t.current.Status,
		TargetStatus: target,
		OriginArea:   actor.Area,
		Observation:  strings.TrimSpace(observation),
		Approval:     flag.Normalize(),
		Actor:        actor,
		CreatedAt:    t.now,
		Attachments:  cloneAttachments(t.added),
	}
	if target.Execution() {
		record.DestinationArea = t.current.AssignedArea
	}
	t.transition = record
	t.next.Status = target
	return record
}

// note records an opinion without moving the obligation.
func (t *txn) note(kind model.OpinionKind, observation string, documents []*attachment.Attachment) *model.OpinionRecord {
	record := &model.OpinionRecord{
		ID:           idgen.New(),
		ObligationID: t.current.ID,
		Sequence:     t.nextSequence(),
		Status:       t.current.Status,
		Kind:         kind,
		Observation:  strings.TrimSpace(observation),
		Actor:        t.recordActor(),
		CreatedAt:    t.now,
		Attachments:  cloneAttachments(documents),
	}
	t.opinion = record
	return record
}

// stage prepares new attachments. Kinds outside allowed and an empty list
// when required are validation errors; the valid ones are staged anyway so
// permission checks see them.
func (t *txn) stage(documents []*attachment.Attachment, required bool, allowed ...attachment.Kind) error {
	if required && len(documents) == 0 {
		return types.NewValidationError(t.action, ReasonNoAttachments)
	}
	var invalid error
	for _, document := range documents {
		if document == nil {
			continue
		}
		a := document.Clone()
		a.Kind = attachment.Classify(a)
		if len(allowed) > 0 && !attachment.HasKind([]*attachment.Attachment{a}, allowed...) {
			if invalid == nil {
				invalid = types.NewValidationError(t.action, fmt.Sprintf("Attachments of kind %s are not accepted here", a.Kind))
			}
			continue
		}
		if model.Blank(a.Name) && model.Blank(a.Path) {
			if invalid == nil {
				invalid = types.NewValidationError(t.action, "Every attachment needs a name or a path")
			}
			continue
		}
		if a.ID == "" {
			a.ID = idgen.New()
		}
		a.ObligationID = t.current.ID
		a.ResponsibleID = t.actor.ID
		a.CreatedAt = t.now
		t.added = append(t.added, a)
	}
	return invalid
}

func (t *txn) fromStatus() string {
	if t.current == nil {
		return ""
	}
	return t.current.Status.Key()
}

// execute runs apply against a freshly loaded, locked obligation and commits
// the result.
func (s *Service) execute(ctx context.Context, action permission.Action, target Target, apply func(ctx context.Context, tx *txn) error) (ret *model.Obligation, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine."+string(action), tracing.KindInternal)
	span.SetAttribute("obligation.id", target.ObligationID)
	defer func() { tracing.EndSpan(span, err) }()

	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("actor.id", actor.ID)
	if strings.TrimSpace(target.ObligationID) == "" {
		return nil, types.NewValidationError(string(action), ReasonMissingID)
	}
	unlock, err := s.locker.Lock(ctx, target.ObligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock obligation %s: %w", target.ObligationID, err)
	}
	defer unlock()

	tx, err := s.begin(ctx, string(action), actor, target)
	if err != nil {
		return nil, err
	}
	if err = apply(ctx, tx); err != nil {
		s.logger.Debug("operation refused", "action", action, "obligationId", target.ObligationID, "actor", actor.ID, "kind", types.KindOf(err), "error", err)
		return nil, err
	}
	if err = s.commit(ctx, tx); err != nil {
		return nil, err
	}
	s.notify(ctx, tx)
	s.logger.Info("obligation changed", "action", action, "obligationId", tx.current.ID,
		"from", tx.fromStatus(), "to", tx.next.Status.Key(), "version", tx.next.Version, "actor", actor.ID)
	return tx.next.Clone(), nil
}

func (s *Service) begin(ctx context.Context, action string, actor *identity.Actor, target Target) (*txn, error) {
	snapshot, err := s.load(ctx, target.ObligationID)
	if err != nil {
		return nil, err
	}
	current := snapshot.Obligation
	if target.ExpectedVersion != 0 && target.ExpectedVersion != current.Version {
		return nil, types.NewConcurrencyConflictError(action, fmt.Errorf("expected version %d, found %d", target.ExpectedVersion, current.Version))
	}
	if target.ExpectedStatus != status.Unknown && target.ExpectedStatus != current.Status {
		return nil, types.NewConcurrencyConflictError(action, fmt.Errorf("expected status %s, found %s", target.ExpectedStatus, current.Status))
	}
	tx := &txn{
		action:  action,
		actor:   actor,
		current: current,
		next:    current.Clone(),
		history: snapshot.History(),
		now:     clock.Now(),
	}
	if tx.existing, err = s.attachments.ByObligation(ctx, current.ID); err != nil {
		return nil, fmt.Errorf("failed to list attachments of %s: %w", current.ID, err)
	}
	if tx.signers, err = s.directory.Signers(ctx, current.ID); err != nil {
		return nil, fmt.Errorf("failed to resolve signers of %s: %w", current.ID, err)
	}
	if action == string(permission.AttachProtocol) {
		if tx.openDependents, err = s.openDependents(ctx, current.ID); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// check re-validates action with the same table the permission query uses.
func (s *Service) check(ctx context.Context, tx *txn, action permission.Action) error {
	decision := s.evaluatorFor(ctx).Decide(action, tx.input())
	tx.warnings = append(tx.warnings, decision.Warnings...)
	return decision.Err()
}

// evaluatorFor honours a request scoped policy.
func (s *Service) evaluatorFor(ctx context.Context) *permission.Evaluator {
	if p := policy.FromContext(ctx); p != nil {
		return permission.New(p)
	}
	return s.evaluator
}

func (s *Service) commit(ctx context.Context, tx *txn) error {
	if tx.deleted {
		return s.remove(ctx, tx)
	}
	for i, a := range tx.added {
		if err := s.attachments.Save(ctx, a); err != nil {
			s.compensate(ctx, tx.added[:i], nil)
			return fmt.Errorf("failed to save attachment %s: %w", a.ID, err)
		}
	}
	for i, a := range tx.removed {
		if err := s.attachments.Delete(ctx, a.ID); err != nil {
			s.compensate(ctx, tx.added, tx.removed[:i])
			return fmt.Errorf("failed to delete attachment %s: %w", a.ID, err)
		}
	}
	tx.next.Version = tx.current.Version + 1
	tx.next.UpdatedAt = tx.now
	err := s.store.Commit(ctx, &obligation.Change{
		Obligation:      tx.next,
		ExpectedVersion: tx.current.Version,
		Transition:      tx.transition,
		Opinion:         tx.opinion,
	})
	if err == nil {
		return nil
	}
	s.compensate(ctx, tx.added, tx.removed)
	return s.storeError(tx.action, tx.current.ID, err)
}

func (s *Service) remove(ctx context.Context, tx *txn) error {
	if err := s.store.Delete(ctx, tx.current.ID, tx.current.Version); err != nil {
		return s.storeError(tx.action, tx.current.ID, err)
	}
	for _, a := range tx.existing {
		if err := s.attachments.Delete(ctx, a.ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			s.logger.Error("failed to delete attachment of removed obligation", "obligationId", tx.current.ID, "attachmentId", a.ID, "error", err)
		}
	}
	return nil
}

// compensate undoes attachment writes of a failed operation.
func (s *Service) compensate(ctx context.Context, added, removed []*attachment.Attachment) {
	for _, a := range added {
		if err := s.attachments.Delete(ctx, a.ID); err != nil {
			s.logger.Error("failed to roll back attachment", "attachmentId", a.ID, "error", err)
		}
	}
	for _, a := range removed {
		if err := s.attachments.Save(ctx, a); err != nil {
			s.logger.Error("failed to restore attachment", "attachmentId", a.ID, "error", err)
		}
	}
}

func (s *Service) storeError(action, id string, err error) error {
	switch {
	case errors.Is(err, dao.ErrConflict):
		return types.NewConcurrencyConflictError(action, err)
	case errors.Is(err, dao.ErrNotFound):
		return types.NewNotFoundError("obligation", id)
	}
	return fmt.Errorf("failed to commit obligation %s: %w", id, err)
}

func (s *Service) notify(ctx context.Context, tx *txn) {
	if s.publisher == nil {
		return
	}
	eventContext := &event.Context{
		ObligationID: tx.next.ID,
		Action:       tx.action,
		FromStatus:   tx.fromStatus(),
		ToStatus:     tx.next.Status.Key(),
		ActorID:      tx.actor.ID,
		Version:      tx.next.Version,
	}
	if tx.deleted {
		eventContext.ToStatus = ""
	}
	notification := Notification{
		Obligation: tx.next.Clone(),
		Transition: tx.transition,
		Opinion:    tx.opinion,
		Label:      tx.label,
		Warnings:   tx.warnings,
	}
	if err := s.publisher.Publish(ctx, event.NewEvent(eventContext, notification)); err != nil {
		s.logger.Error("failed to publish notification", "obligationId", tx.next.ID, "action", tx.action, "error", err)
	}
}

func (s *Service) load(ctx context.Context, id string) (*obligation.Snapshot, error) {
	snapshot, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError("obligation", id)
		}
		return nil, fmt.Errorf("failed to load obligation %s: %w", id, err)
	}
	return snapshot, nil
}

// openDependents counts conditioned obligations of id that are not closed.
func (s *Service) openDependents(ctx context.Context, id string) (int, error) {
	dependents, err := s.store.List(ctx, dao.NewParameter(obligation.ParamPrincipalID, id))
	if err != nil {
		return 0, fmt.Errorf("failed to list dependents of %s: %w", id, err)
	}
	count := 0
	for _, o := range dependents {
		if !o.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func cloneAttachments(list []*attachment.Attachment) []*attachment.Attachment {
	if len(list) == 0 {
		return nil
	}
	ret := make([]*attachment.Attachment, 0, len(list))
	for _, a := range list {
		ret = append(ret, a.Clone())
	}
	return ret
}

func missingCommand(action permission.Action) error {
	return types.NewValidationError(string(action), ReasonMissingCommand)
}
