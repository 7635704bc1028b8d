package way

import (
	"log/slog"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/directory"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/event"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/lock"
)

// Option customises the service.
type Option func(s *Service)

// WithStore sets the obligation store.
func WithStore(store obligation.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithAttachmentStore sets the attachment store.
func WithAttachmentStore(store attachments.Store) Option {
	return func(s *Service) { s.attachments = store }
}

// WithDirectory sets the signer directory.
func WithDirectory(dir directory.Directory) Option {
	return func(s *Service) { s.directory = dir }
}

// WithIdentity sets how the calling actor is resolved.
func WithIdentity(provider identity.Provider) Option {
	return func(s *Service) { s.identity = provider }
}

// WithLocker sets the per-obligation lock.
func WithLocker(locker lock.Locker) Option {
	return func(s *Service) { s.locker = locker }
}

// WithPolicy sets the default policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithEventService publishes notifications through service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.events = service }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCloser registers fn to run on Close.
func WithCloser(fn func() error) Option {
	return func(s *Service) { s.closers = append(s.closers, fn) }
}
