// Package attachment defines the attachment store the engine consumes.
package attachment

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

// List parameter names.
const (
	ParamObligationID = "ObligationID"
	ParamKind         = "Kind"
)

// Store keeps attachment metadata by obligation and kind.
type Store interface {
	dao.Service[string, attachment.Attachment]
	// ByObligation lists the attachments of an obligation, optionally
	// restricted to kinds.
	ByObligation(ctx context.Context, obligationID string, kinds ...attachment.Kind) ([]*attachment.Attachment, error)
}

// Fields projects a for parameter matching.
func Fields(a *attachment.Attachment) map[string]string {
	return map[string]string{
		ParamObligationID: a.ObligationID,
		ParamKind:         string(attachment.Classify(a)),
	}
}

// KindParameter builds a kind filter.
func KindParameter(kinds ...attachment.Kind) *dao.Parameter {
	values := make([]string, 0, len(kinds))
	for _, k := range kinds {
		values = append(values, string(k))
	}
	return &dao.Parameter{Name: ParamKind, Value: values}
}
