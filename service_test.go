package way

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/attachment"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/engine"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/identity"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/secret"
)

var (
	admin    = &identity.Actor{ID: "admin", Role: role.Administrator}
	executor = &identity.Actor{ID: "exec", Role: role.Executor, Areas: []string{"LEGAL"}}
)

// run drives one obligation from creation to regulatory validation and
// returns it re-read from the store.
func run(t *testing.T, srv *Service) *model.Obligation {
	t.Helper()
	eng := srv.Engine()
	adminCtx := identity.WithActor(context.Background(), admin)
	execCtx := identity.WithActor(context.Background(), executor)

	_, err := eng.Create(adminCtx, &engine.CreateCommand{Obligation: &model.Obligation{ID: "o1", AssignedArea: "LEGAL", Status: status.Pendente}})
	require.NoError(t, err)
	_, err = eng.AttachEvidence(execCtx, &engine.NoteCommand{
		Target:      engine.Target{ObligationID: "o1"},
		Attachments: []*attachment.Attachment{{Kind: attachment.EvidenceFile, Name: "report.pdf"}},
	})
	require.NoError(t, err)
	_, err = eng.SendToAnalysis(execCtx, &engine.NoteCommand{Target: engine.Target{ObligationID: "o1", ExpectedStatus: status.EmAndamento}})
	require.NoError(t, err)
	o, err := eng.Get(context.Background(), "o1")
	require.NoError(t, err)
	return o
}

func TestNew(t *testing.T) {
	srv, err := New()
	require.NoError(t, err)
	defer srv.Close()
	assert.Nil(t, srv.Events())

	o := run(t, srv)
	assert.Equal(t, status.EmValidacaoRegulatorio, o.Status)
	assert.Equal(t, int64(3), o.Version)
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		store StoreConfig
	}{
		{name: "memory", store: StoreConfig{Kind: StoreMemory}},
		{name: "fs", store: StoreConfig{Kind: StoreFS, URL: "data"}},
		{name: "sqlite", store: StoreConfig{Kind: StoreSQLite, URL: "way.db"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Store = tc.store
			if cfg.Store.URL != "" {
				cfg.Store.URL = filepath.Join(t.TempDir(), cfg.Store.URL)
			}
			cfg.Events.Vendor = "memory"
			cfg.Log.Level = "error"
			srv, err := NewFromConfig(context.Background(), cfg)
			require.NoError(t, err)
			defer srv.Close()
			assert.NotNil(t, srv.Events())

			o := run(t, srv)
			assert.Equal(t, status.EmValidacaoRegulatorio, o.Status)
			assert.Equal(t, "exec", o.TechnicalResponsibleID)

			files, err := srv.Engine().Attachments(context.Background(), "o1")
			require.NoError(t, err)
			assert.Len(t, files, 1)
		})
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Kind = "mongo"
	_, err := NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewFromConfig_StoreSecret(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/way/secret/" + t.Name()
	require.NoError(t, secret.New("").Secure(ctx, URL, filepath.Join(t.TempDir(), "way.db")))

	cfg := DefaultConfig()
	cfg.Store = StoreConfig{Kind: StoreSQLite, URLSecret: URL}
	cfg.Log.Level = "error"
	srv, err := NewFromConfig(ctx, cfg)
	require.NoError(t, err)
	defer srv.Close()
	assert.Empty(t, cfg.Store.URL)

	o := run(t, srv)
	assert.Equal(t, status.EmValidacaoRegulatorio, o.Status)
}

func TestConfig_ResolveSecrets(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/way/secret/" + t.Name()
	require.NoError(t, secret.New("").Secure(ctx, URL, "redis-password"))

	tests := []struct {
		name      string
		lock      LockConfig
		expect    string
		expectErr bool
	}{
		{name: "plain password", lock: LockConfig{Kind: LockRedis, Addr: "localhost:6379", Password: "plain"}, expect: "plain"},
		{name: "password secret", lock: LockConfig{Kind: LockRedis, Addr: "localhost:6379", PasswordSecret: URL}, expect: "redis-password"},
		{name: "missing secret", lock: LockConfig{Kind: LockRedis, Addr: "localhost:6379", PasswordSecret: URL + "-missing"}, expectErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Lock = tc.lock
			resolved, err := cfg.resolveSecrets(ctx)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, resolved.Lock.Password)
			assert.Equal(t, tc.lock.Password, cfg.Lock.Password)
		})
	}
}
