package memory

import (
	"context"
	"sync"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/criteria"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
)

// Service implements an in-memory, thread-safe obligation store. All API
// methods work with copies to eliminate data races between goroutines.
type Service struct {
	snapshots map[string]*obligation.Snapshot
	order     []string
	mux       sync.RWMutex
}

var _ obligation.Store = (*Service)(nil)

func (s *Service) Create(_ context.Context, o *model.Obligation) error {
	if o == nil {
		return dao.ErrNilEntity
	}
	if o.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.snapshots[o.ID]; ok {
		return dao.ErrExists
	}
	s.snapshots[o.ID] = &obligation.Snapshot{Obligation: o.Clone()}
	s.order = append(s.order, o.ID)
	return nil
}

func (s *Service) Load(_ context.Context, id string) (*obligation.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	snapshot, ok := s.snapshots[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return snapshot.Clone(), nil
}

func (s *Service) Commit(_ context.Context, change *obligation.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	current, ok := s.snapshots[change.Obligation.ID]
	if !ok {
		return dao.ErrNotFound
	}
	if current.Obligation.Version != change.ExpectedVersion {
		return dao.ErrConflict
	}
	next := current.Clone()
	next.Obligation = change.Obligation.Clone()
	if change.Transition != nil {
		next.Transitions = append(next.Transitions, change.Transition)
	}
	if change.Opinion != nil {
		next.Opinions = append(next.Opinions, change.Opinion)
	}
	s.snapshots[change.Obligation.ID] = next
	return nil
}

func (s *Service) Delete(_ context.Context, id string, expectedVersion int64) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	current, ok := s.snapshots[id]
	if !ok {
		return dao.ErrNotFound
	}
	if current.Obligation.Version != expectedVersion {
		return dao.ErrConflict
	}
	delete(s.snapshots, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Obligation, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.Obligation, 0, len(s.snapshots))
	for _, id := range s.order {
		o := s.snapshots[id].Obligation
		if !criteria.Match(obligation.Fields(o), parameters) {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func New() *Service {
	return &Service{snapshots: map[string]*obligation.Snapshot{}}
}
