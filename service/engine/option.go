package engine

import (
	"log/slog"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/directory"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/event"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/lock"
)

type Option func(s *Service)

// WithStore sets the obligation store.
func WithStore(store obligation.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithAttachments sets the attachment store.
func WithAttachments(store attachments.Store) Option {
	return func(s *Service) { s.attachments = store }
}

// WithDirectory sets the signer directory.
func WithDirectory(dir directory.Directory) Option {
	return func(s *Service) { s.directory = dir }
}

// WithIdentity sets the actor provider.
func WithIdentity(provider identity.Provider) Option {
	return func(s *Service) { s.identity = provider }
}

// WithLocker sets the per-obligation locker.
func WithLocker(locker lock.Locker) Option {
	return func(s *Service) { s.locker = locker }
}

// WithEvaluator sets the permission evaluator.
func WithEvaluator(evaluator *permission.Evaluator) Option {
	return func(s *Service) { s.evaluator = evaluator }
}

// WithEvents publishes a Notification after every committed change.
func WithEvents(events *event.Service) Option {
	return func(s *Service) { s.events = events }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}
