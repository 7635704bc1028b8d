package way

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/policy"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "fs without url", mutate: func(c *Config) { c.Store.Kind = StoreFS }, expectErr: true},
		{name: "sqlite", mutate: func(c *Config) { c.Store = StoreConfig{Kind: StoreSQLite, URL: "way.db"} }},
		{name: "postgres from secret", mutate: func(c *Config) { c.Store = StoreConfig{Kind: StorePostgres, URLSecret: "mem://localhost/dsn"} }},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Kind = "mongo" }, expectErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Lock.Kind = LockRedis }, expectErr: true},
		{name: "fs events without url", mutate: func(c *Config) { c.Events.Vendor = "fs" }, expectErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, expectErr: true},
		{name: "bad policy", mutate: func(c *Config) { c.Policy.Conditioning = "block" }, expectErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join(dir, "way.yaml")
	content := `store:
  kind: fs
  url: ${env.WAY_TEST_DATA}
lock:
  kind: memory
  ttl: 45s
policy:
  conditioning: enforce
directory:
  signers: [d1, d2]
  obligations:
    o9: [d3]
log:
  level: debug
`
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))
	t.Setenv("WAY_TEST_DATA", filepath.Join(dir, "data"))
	t.Setenv("WAY_LOG_FORMAT", "json")
	t.Setenv("WAY_POLICY_ROUTING_APPROVAL_GUARD", policy.RoutingGuardStrict)

	cfg, err := LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, StoreFS, cfg.Store.Kind)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Store.URL)
	assert.Equal(t, 45*time.Second, cfg.Lock.TTL)
	assert.Equal(t, policy.ConditioningEnforce, cfg.Policy.Conditioning)
	assert.Equal(t, policy.RoutingGuardStrict, cfg.Policy.RoutingApprovalGuard)
	assert.Equal(t, []string{"d1", "d2"}, cfg.Directory.Signers)
	assert.Equal(t, []string{"d3"}, cfg.Directory.Obligations["o9"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("WAY_DIRECTORY_SIGNERS", "d1,d2")
	cfg, err := LoadConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, []string{"d1", "d2"}, cfg.Directory.Signers)

	_, err = LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
