package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/dao"
)

func TestService_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "way.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	svc := New(db)
	require.NoError(t, svc.Migrate(ctx))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a2", ObligationID: "o1", Kind: attachment.Correspondence, Name: "letter.pdf", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a1", ObligationID: "o1", Kind: "E", Name: "draft.pdf", CreatedAt: base}))
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a1", ObligationID: "o1", Kind: "E", Name: "report.pdf", CreatedAt: base}))
	require.NoError(t, svc.Save(ctx, &attachment.Attachment{ID: "a3", ObligationID: "o2", Kind: attachment.Other, Name: "memo.txt", CreatedAt: base}))

	loaded, err := svc.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", loaded.Name)
	_, err = svc.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	list, err := svc.ByObligation(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)

	list, err = svc.ByObligation(ctx, "o1", attachment.EvidenceFile)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, svc.Delete(ctx, "a1"))
	assert.ErrorIs(t, svc.Delete(ctx, "a1"), dao.ErrNotFound)
}

func TestService_ListQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM obligation_attachments WHERE obligation_id IN ($1)")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow(`{"id":"a1","obligationId":"o1","kind":"P","name":"protocol.pdf"}`).
			AddRow(`{"id":"a2","obligationId":"o1","kind":"OTHER","name":"memo.txt"}`))

	list, err := New(db).ByObligation(context.Background(), "o1", attachment.Protocol)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
