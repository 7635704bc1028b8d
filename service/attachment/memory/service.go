package memory

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/store"
)

// Service is an in-memory attachment store.
type Service struct {
	*store.MemoryStore[string, attachment.Attachment]
}

var _ attachments.Store = (*Service)(nil)

// Save stores a copy of a.
func (s *Service) Save(ctx context.Context, a *attachment.Attachment) error {
	if a == nil {
		return dao.ErrNilEntity
	}
	if a.ID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, a.Clone())
}

// ByObligation lists attachments of an obligation in insertion order.
func (s *Service) ByObligation(ctx context.Context, obligationID string, kinds ...attachment.Kind) ([]*attachment.Attachment, error) {
	parameters := []*dao.Parameter{dao.NewParameter(attachments.ParamObligationID, obligationID)}
	if len(kinds) > 0 {
		parameters = append(parameters, attachments.KindParameter(kinds...))
	}
	list, err := s.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	ret := make([]*attachment.Attachment, 0, len(list))
	for _, a := range list {
		ret = append(ret, a.Clone())
	}
	return ret, nil
}

func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, attachment.Attachment](func(a *attachment.Attachment) string { return a.ID }).
			WithFields(attachments.Fields),
	}
}
