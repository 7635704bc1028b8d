// Package fs stores attachment metadata as JSON files on any afs URL.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/criteria"
)

// Service keeps one file per attachment under basePath.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ attachments.Store = (*Service)(nil)

func (s *Service) Save(ctx context.Context, a *attachment.Attachment) error {
	if a == nil {
		return dao.ErrNilEntity
	}
	if a.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attachment: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.fs.Upload(ctx, s.attachmentPath(a.ID), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save attachment %s: %w", a.ID, err)
	}
	return nil
}

func (s *Service) Load(ctx context.Context, id string) (*attachment.Attachment, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	filePath := s.attachmentPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if attachment exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %s: %w", id, err)
	}
	ret := &attachment.Attachment{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachment %s: %w", id, err)
	}
	return ret, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.attachmentPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if attachment exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, filePath)
}

// List returns attachments matching parameters ordered by creation time.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*attachment.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachment files: %w", err)
	}
	var ret []*attachment.Attachment
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("skipping unreadable attachment file", "url", object.URL(), "error", err)
			continue
		}
		a := &attachment.Attachment{}
		if err := json.Unmarshal(data, a); err != nil || a.ID == "" {
			s.logger.Warn("skipping malformed attachment file", "url", object.URL(), "error", err)
			continue
		}
		if criteria.Match(attachments.Fields(a), parameters) {
			ret = append(ret, a)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

func (s *Service) ByObligation(ctx context.Context, obligationID string, kinds ...attachment.Kind) ([]*attachment.Attachment, error) {
	parameters := []*dao.Parameter{dao.NewParameter(attachments.ParamObligationID, obligationID)}
	if len(kinds) > 0 {
		parameters = append(parameters, attachments.KindParameter(kinds...))
	}
	return s.List(ctx, parameters...)
}

func (s *Service) attachmentPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", path.Base(id)))
}

// Option customises the store.
type Option func(s *Service)

// WithLogger sets the logger used for skipped files.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFileSystem replaces the afs service, e.g. with a memory file system.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// New creates a filesystem attachment store rooted at basePath.
func New(basePath string, options ...Option) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if !strings.Contains(basePath, "://") {
		basePath = url.Normalize(basePath, file.Scheme)
	}
	ret := &Service{basePath: basePath, fs: afs.New(), logger: slog.Default()}
	for _, opt := range options {
		opt(ret)
	}
	ctx := context.Background()
	if exists, _ := ret.fs.Exists(ctx, basePath); !exists {
		if err := ret.fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return ret, nil
}
