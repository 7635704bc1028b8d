// Package sqlstore persists obligations in a relational database (PostgreSQL
// or SQLite). The obligation row carries a version column; every write is an
// UPDATE ... WHERE version = expected inside one transaction together with
// the history insert.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao/obligation"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS obligations (
		id TEXT PRIMARY KEY,
		version BIGINT NOT NULL,
		status INTEGER NOT NULL,
		principal_id TEXT NOT NULL DEFAULT '',
		assigned_area TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS obligation_transitions (
		id TEXT PRIMARY KEY,
		obligation_id TEXT NOT NULL,
		sequence BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS obligation_opinions (
		id TEXT PRIMARY KEY,
		obligation_id TEXT NOT NULL,
		sequence BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS obligation_transitions_obligation ON obligation_transitions (obligation_id, sequence)`,
	`CREATE INDEX IF NOT EXISTS obligation_opinions_obligation ON obligation_opinions (obligation_id, sequence)`,
}

// Service is a database/sql backed obligation store.
type Service struct {
	db *sql.DB
}

var _ obligation.Store = (*Service)(nil)

// Open opens a database for driver and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Service, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	ret := New(db)
	if err = ret.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ret, nil
}

// New wraps an open database. Call Migrate before first use on a fresh database.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Migrate creates the tables when missing.
func (s *Service) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate obligation schema: %w", err)
		}
	}
	return nil
}

// DB returns the underlying database so companion stores can share it.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) Create(ctx context.Context, o *model.Obligation) error {
	if o == nil {
		return dao.ErrNilEntity
	}
	if o.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal obligation: %w", err)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.exists(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		if exists {
			return dao.ErrExists
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO obligations (id, version, status, principal_id, assigned_area, data) VALUES ($1, $2, $3, $4, $5, $6)",
			o.ID, o.Version, int(o.Status), o.PrincipalID, o.AssignedArea, string(data))
		if err != nil {
			return fmt.Errorf("failed to insert obligation: %w", err)
		}
		return nil
	})
}

func (s *Service) Load(ctx context.Context, id string) (*obligation.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM obligations WHERE id = $1", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load obligation: %w", err)
	}
	ret := &obligation.Snapshot{Obligation: &model.Obligation{}}
	if err = json.Unmarshal([]byte(data), ret.Obligation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal obligation %s: %w", id, err)
	}
	if ret.Transitions, err = loadRecords[model.TransitionRecord](ctx, s.db,
		"SELECT data FROM obligation_transitions WHERE obligation_id = $1 ORDER BY sequence", id); err != nil {
		return nil, err
	}
	if ret.Opinions, err = loadRecords[model.OpinionRecord](ctx, s.db,
		"SELECT data FROM obligation_opinions WHERE obligation_id = $1 ORDER BY sequence", id); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) Commit(ctx context.Context, change *obligation.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}
	o := change.Obligation
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal obligation: %w", err)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE obligations SET version = $1, status = $2, principal_id = $3, assigned_area = $4, data = $5 WHERE id = $6 AND version = $7",
			o.Version, int(o.Status), o.PrincipalID, o.AssignedArea, string(data), o.ID, change.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update obligation: %w", err)
		}
		if err = s.checkAffected(ctx, tx, res, o.ID); err != nil {
			return err
		}
		if r := change.Transition; r != nil {
			if err = insertRecord(ctx, tx, "obligation_transitions", r.ID, o.ID, r.Sequence, r); err != nil {
				return err
			}
		}
		if r := change.Opinion; r != nil {
			if err = insertRecord(ctx, tx, "obligation_opinions", r.ID, o.ID, r.Sequence, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id string, expectedVersion int64) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM obligations WHERE id = $1 AND version = $2", id, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to delete obligation: %w", err)
		}
		if err = s.checkAffected(ctx, tx, res, id); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "DELETE FROM obligation_transitions WHERE obligation_id = $1", id); err != nil {
			return fmt.Errorf("failed to delete transitions: %w", err)
		}
		if _, err = tx.ExecContext(ctx, "DELETE FROM obligation_opinions WHERE obligation_id = $1", id); err != nil {
			return fmt.Errorf("failed to delete opinions: %w", err)
		}
		return nil
	})
}

var columns = map[string]string{
	obligation.ParamStatus:       "status",
	obligation.ParamPrincipalID:  "principal_id",
	obligation.ParamAssignedArea: "assigned_area",
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Obligation, error) {
	query, args, err := listQuery(parameters)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ret []*model.Obligation
	for rows.Next() {
		var data string
		if err = rows.Scan(&data); err != nil {
			return nil, err
		}
		o := &model.Obligation{}
		if err = json.Unmarshal([]byte(data), o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal obligation: %w", err)
		}
		ret = append(ret, o)
	}
	return ret, rows.Err()
}

func listQuery(parameters []*dao.Parameter) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		column, ok := columns[parameter.Name]
		if !ok {
			continue
		}
		var placeholders []string
		for _, value := range parameter.Values() {
			var arg any = value
			if parameter.Name == obligation.ParamStatus {
				code, err := status.Parse(value)
				if err != nil {
					return "", nil, err
				}
				arg = int(code)
			}
			args = append(args, arg)
			placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
		}
		if len(placeholders) == 0 {
			continue
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	query := "SELECT data FROM obligations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args, nil
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Service) exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM obligations WHERE id = $1", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check obligation: %w", err)
	}
	return count > 0, nil
}

// checkAffected tells a missing row from a version mismatch.
func (s *Service) checkAffected(ctx context.Context, tx *sql.Tx, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	exists, err := s.exists(ctx, tx, id)
	if err != nil {
		return err
	}
	if !exists {
		return dao.ErrNotFound
	}
	return dao.ErrConflict
}

func insertRecord(ctx context.Context, tx *sql.Tx, table, id, obligationID string, sequence int64, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	query := fmt.Sprintf("INSERT INTO %s (id, obligation_id, sequence, data) VALUES ($1, $2, $3, $4)", table)
	if _, err = tx.ExecContext(ctx, query, id, obligationID, sequence, string(data)); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func loadRecords[T any](ctx context.Context, db *sql.DB, query, id string) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ret []*T
	for rows.Next() {
		var data string
		if err = rows.Scan(&data); err != nil {
			return nil, err
		}
		record := new(T)
		if err = json.Unmarshal([]byte(data), record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		ret = append(ret, record)
	}
	return ret, rows.Err()
}
