package way

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/viant/afs/url"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/runtime/permission"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	afiles "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment/fs"
	amemory "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment/memory"
	asql "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment/sqlstore"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
	ofs "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation/fs"
	omemory "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation/memory"
	osql "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation/sqlstore"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/directory"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/engine"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/event"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/lock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/lock/redis"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/tracing"
)

// Service wires the transition engine with its collaborators.
type Service struct {
	store       obligation.Store
	attachments attachments.Store
	directory   directory.Directory
	identity    identity.Provider
	locker      lock.Locker
	policy      *policy.Policy
	events      *event.Service
	logger      *slog.Logger
	closers     []func() error

	engine *engine.Service
}

// Engine returns the transition engine.
func (s *Service) Engine() *engine.Service {
	return s.engine
}

// Events returns the notification service, nil when disabled.
func (s *Service) Events() *event.Service {
	return s.events
}

// Close stops listeners and releases stores.
func (s *Service) Close() error {
	if s.events != nil {
		s.events.Close()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	engineOptions := []engine.Option{
		engine.WithStore(s.store),
		engine.WithAttachments(s.attachments),
		engine.WithDirectory(s.directory),
		engine.WithIdentity(s.identity),
		engine.WithLocker(s.locker),
		engine.WithEvaluator(permission.New(s.policy)),
		engine.WithLogger(s.logger),
	}
	if s.events != nil {
		engineOptions = append(engineOptions, engine.WithEvents(s.events))
	}
	var err error
	s.engine, err = engine.New(engineOptions...)
	return err
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.store == nil {
		s.store = omemory.New()
	}
	if s.attachments == nil {
		s.attachments = amemory.New()
	}
	if s.directory == nil {
		s.directory = directory.New(nil, nil)
	}
	if s.identity == nil {
		s.identity = identity.ContextProvider{}
	}
	if s.locker == nil {
		s.locker = lock.NewMemory()
	}
}

// New creates an in-process service; options replace the memory defaults.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewFromConfig builds a service from cfg. Options are applied after the
// configured collaborators and take precedence.
func NewFromConfig(ctx context.Context, cfg *Config, options ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg, err := cfg.resolveSecrets(ctx)
	if err != nil {
		return nil, err
	}
	ret := &Service{}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	ret.logger = logger
	if err = tracing.Init(cfg.Tracing); err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	if ret.policy, err = policy.New(&cfg.Policy); err != nil {
		return nil, err
	}
	if err = ret.openStores(ctx, cfg.Store); err != nil {
		return nil, err
	}
	ret.locker = newLocker(cfg.Lock, &ret.closers)
	ret.directory = directory.New(cfg.Directory.Signers, cfg.Directory.Obligations)
	if cfg.Events.Vendor != "" {
		var eventOptions = []event.Option{event.WithLogger(logger)}
		if cfg.Events.BaseURL != "" {
			eventOptions = append(eventOptions, event.WithFsBaseURL(cfg.Events.BaseURL))
		}
		if ret.events, err = event.New(messaging.Vendor(cfg.Events.Vendor), eventOptions...); err != nil {
			_ = ret.Close()
			return nil, err
		}
	}
	if err = ret.init(options); err != nil {
		_ = ret.Close()
		return nil, err
	}
	ret.logger.Debug("service started", "store", cfg.Store.Kind, "lock", cfg.Lock.Kind, "events", cfg.Events.Vendor)
	return ret, nil
}

func (s *Service) openStores(ctx context.Context, cfg StoreConfig) error {
	switch cfg.Kind {
	case StoreFS:
		obligations, err := ofs.New(url.Join(cfg.URL, "obligations"), ofs.WithLogger(s.logger))
		if err != nil {
			return err
		}
		files, err := afiles.New(url.Join(cfg.URL, "attachments"), afiles.WithLogger(s.logger))
		if err != nil {
			return err
		}
		s.store, s.attachments = obligations, files
	case StoreSQLite, StorePostgres:
		db, err := osql.Open(ctx, cfg.Kind, cfg.URL)
		if err != nil {
			return err
		}
		files := asql.New(db.DB())
		if err = files.Migrate(ctx); err != nil {
			_ = db.Close()
			return err
		}
		s.store, s.attachments = db, files
		s.closers = append(s.closers, db.Close)
	}
	return nil
}

func newLocker(cfg LockConfig, closers *[]func() error) lock.Locker {
	if cfg.Kind != LockRedis {
		return lock.NewMemory()
	}
	client := redis.NewClient(cfg.Addr, cfg.Password, cfg.DB)
	*closers = append(*closers, client.Close)
	var options []redis.Option
	if cfg.TTL > 0 {
		options = append(options, redis.WithTTL(cfg.TTL))
	}
	if cfg.Prefix != "" {
		options = append(options, redis.WithPrefix(cfg.Prefix))
	}
	return redis.New(client, options...)
}

func newLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	handlerOptions := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOptions)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOptions)), nil
}

func parseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level: unsupported level %q", value)
}
