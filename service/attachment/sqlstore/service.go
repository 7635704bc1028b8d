// Package sqlstore keeps attachment metadata in the obligation database.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	attachments "github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/criteria"
)

const schema = `CREATE TABLE IF NOT EXISTS obligation_attachments (
	id TEXT PRIMARY KEY,
	obligation_id TEXT NOT NULL,
	data TEXT NOT NULL
)`

// Service is a database/sql attachment store.
type Service struct {
	db *sql.DB
}

var _ attachments.Store = (*Service)(nil)

// New wraps db; call Migrate on a fresh database.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Migrate creates the attachment table when missing.
func (s *Service) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate attachment schema: %w", err)
	}
	return nil
}

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
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO obligation_attachments (id, obligation_id, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET obligation_id = excluded.obligation_id, data = excluded.data",
		a.ID, a.ObligationID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save attachment %s: %w", a.ID, err)
	}
	return nil
}

func (s *Service) Load(ctx context.Context, id string) (*attachment.Attachment, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM obligation_attachments WHERE id = $1", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment %s: %w", id, err)
	}
	ret := &attachment.Attachment{}
	if err = json.Unmarshal([]byte(data), ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachment %s: %w", id, err)
	}
	return ret, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM obligation_attachments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

// List filters by obligation in SQL and by kind after classification, so
// legacy kind codes match their canonical kind.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*attachment.Attachment, error) {
	query := "SELECT data FROM obligation_attachments"
	var args []any
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != attachments.ParamObligationID {
			continue
		}
		values := parameter.Values()
		placeholders := make([]string, 0, len(values))
		for _, v := range values {
			args = append(args, v)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		query += " WHERE obligation_id IN (" + strings.Join(placeholders, ", ") + ")"
		break
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ret []*attachment.Attachment
	for rows.Next() {
		var data string
		if err = rows.Scan(&data); err != nil {
			return nil, err
		}
		a := &attachment.Attachment{}
		if err = json.Unmarshal([]byte(data), a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachment: %w", err)
		}
		if criteria.Match(attachments.Fields(a), parameters) {
			ret = append(ret, a)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
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
