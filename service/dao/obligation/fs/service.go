package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/criteria"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
)

// Service stores one JSON document per obligation (the obligation and its
// history) under basePath. Version checks are serialized by an in-process
// mutex; cross-process writers must share a lock.Locker.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ obligation.Store = (*Service)(nil)

func (s *Service) Create(ctx context.Context, o *model.Obligation) error {
	if o == nil {
		return dao.ErrNilEntity
	}
	if o.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.fs.Exists(ctx, s.obligationPath(o.ID))
	if err != nil {
		return fmt.Errorf("failed to check if obligation exists: %w", err)
	}
	if exists {
		return dao.ErrExists
	}
	return s.write(ctx, &obligation.Snapshot{Obligation: o.Clone()})
}

func (s *Service) Load(ctx context.Context, id string) (*obligation.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx, id)
}

func (s *Service) Commit(ctx context.Context, change *obligation.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(ctx, change.Obligation.ID)
	if err != nil {
		return err
	}
	if current.Obligation.Version != change.ExpectedVersion {
		return dao.ErrConflict
	}
	current.Obligation = change.Obligation.Clone()
	if change.Transition != nil {
		current.Transitions = append(current.Transitions, change.Transition)
	}
	if change.Opinion != nil {
		current.Opinions = append(current.Opinions, change.Opinion)
	}
	return s.write(ctx, current)
}

func (s *Service) Delete(ctx context.Context, id string, expectedVersion int64) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(ctx, id)
	if err != nil {
		return err
	}
	if current.Obligation.Version != expectedVersion {
		return dao.ErrConflict
	}
	if err := s.fs.Delete(ctx, s.obligationPath(id)); err != nil {
		return fmt.Errorf("failed to delete obligation file: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list obligation files: %w", err)
	}
	var ret []*model.Obligation
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("skipping unreadable obligation file", "url", object.URL(), "error", err)
			continue
		}
		var snapshot obligation.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil || snapshot.Obligation == nil {
			s.logger.Warn("skipping malformed obligation file", "url", object.URL(), "error", err)
			continue
		}
		if !criteria.Match(obligation.Fields(snapshot.Obligation), parameters) {
			continue
		}
		ret = append(ret, snapshot.Obligation)
	}
	return ret, nil
}

func (s *Service) read(ctx context.Context, id string) (*obligation.Snapshot, error) {
	filePath := s.obligationPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if obligation exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read obligation file: %w", err)
	}
	var snapshot obligation.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal obligation %s: %w", id, err)
	}
	return &snapshot, nil
}

func (s *Service) write(ctx context.Context, snapshot *obligation.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal obligation: %w", err)
	}
	filePath := s.obligationPath(snapshot.Obligation.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save obligation to file %s: %w", filePath, err)
	}
	return nil
}

func (s *Service) obligationPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", path.Base(id)))
}

// Option customises the store.
type Option func(s *Service)

// WithLogger sets the logger used for skipped files.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a filesystem obligation store; basePath may be a local path or
// any afs URL.
func New(basePath string, options ...Option) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if !strings.Contains(basePath, "://") {
		basePath = url.Normalize(basePath, file.Scheme)
	}
	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	ret := &Service{basePath: basePath, fs: fs, logger: slog.Default()}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}
