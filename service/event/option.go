package event

import (
	"log/slog"
	"time"

	"github.com/viant/afs"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging/fs"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging/memory"
)

type Option func(s *Service)

// WithFsQueueConfig sets the per queue configuration of the fs vendor.
func WithFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsQueueConfig = newConfig
	}
}

// WithFsBaseURL places every fs queue in its own folder under baseURL.
func WithFsBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.fsQueueConfig = func(name string) fs.Config {
			return fs.DefaultConfig(baseURL + "/" + name)
		}
	}
}

// WithFileSystem sets the afs service used by the fs vendor.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithMemoryQueueConfig sets the per queue configuration of the memory vendor.
func WithMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memQueueConfig = newConfig
	}
}

// WithLogger sets the logger used by listeners.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPollInterval sets how long listeners wait when a non blocking queue is empty.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.pollInterval = interval
	}
}
