package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, BackendGRPC, c.StoreBackend)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 500, c.ImportBatchSize)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "backend", mutate: func(c *Config) { c.StoreBackend = "firestore" }},
		{name: "user", mutate: func(c *Config) { c.UserID = "" }},
		{name: "batch too big", mutate: func(c *Config) { c.ImportBatchSize = 501 }},
		{name: "batch zero", mutate: func(c *Config) { c.ImportBatchSize = 0 }},
		{name: "interval", mutate: func(c *Config) { c.OnlineCheckInterval = 0 }},
		{name: "timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }},
		{name: "rate", mutate: func(c *Config) { c.CommitRate = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func parse(t *testing.T, args ...string) (*Flags, *pflag.FlagSet) {
	t.Helper()
	f := &Flags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse(args))
	return f, fs
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"server_endpoint_addr": "store.example:9000",
		"store_backend": "redis",
		"online_check_interval": "10s",
		"request_timeout": 2000000000,
		"import_batch_size": 250
	}`)
	f, fs := parse(t, "--config", path)

	cfg, err := Load(f, fs.Changed)
	require.NoError(t, err)
	assert.Equal(t, "store.example:9000", cfg.ServerEndpointAddr)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 250, cfg.ImportBatchSize)
	assert.Equal(t, "local", cfg.UserID, "absent keys keep defaults")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "cfg.yaml", `
user_id: nurse-01
access_token: secret
commit_rate: 2.5
online_check_interval: 1m
log_level: debug
`)
	f, fs := parse(t, "-c", path)

	cfg, err := Load(f, fs.Changed)
	require.NoError(t, err)
	assert.Equal(t, "nurse-01", cfg.UserID)
	assert.Equal(t, "secret", cfg.AccessToken)
	assert.Equal(t, 2.5, cfg.CommitRate)
	assert.Equal(t, time.Minute, cfg.OnlineCheckInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"server_endpoint_addr": "file:1", "user_id": "from-file"}`)
	f, fs := parse(t, "--config", path, "--addr", "flag:2", "--store", "memory", "--check-interval", "5s")

	cfg, err := Load(f, fs.Changed)
	require.NoError(t, err)
	assert.Equal(t, "flag:2", cfg.ServerEndpointAddr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "from-file", cfg.UserID, "unset flags do not clobber file values")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		f, fs := parse(t, "--config", filepath.Join(t.TempDir(), "nope.json"))
		_, err := Load(f, fs.Changed)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		f, fs := parse(t, "--config", writeFile(t, "bad.json", `{ this is not valid json`))
		_, err := Load(f, fs.Changed)
		assert.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		f, fs := parse(t, "--config", writeFile(t, "bad.yml", "request_timeout: soon\n"))
		_, err := Load(f, fs.Changed)
		assert.Error(t, err)
	})

	t.Run("invalid result", func(t *testing.T) {
		f, fs := parse(t, "--batch-size", "1000")
		_, err := Load(f, fs.Changed)
		assert.Error(t, err)
	})
}
