package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
)

// Store backends.
const (
	BackendGRPC   = "grpc"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds runtime settings for the medsupply CLI.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Duration values;
// CommitRate is import chunk commits per second (0 disables pacing).
type Config struct {
	ServerEndpointAddr  string
	StoreBackend        string
	RedisAddr           string
	AccessToken         string
	UserID              string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	ImportBatchSize     int
	CommitRate          float64
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults. An empty DatabasePath is
// resolved by the CLI to the user cache directory.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.StoreBackend = BackendGRPC
	c.RedisAddr = "127.0.0.1:6379"
	c.UserID = "local"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.ImportBatchSize = client.MaxBatchSize
	c.LogLevel = "warn"
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendGRPC, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want grpc, redis or memory)", c.StoreBackend)
	}
	if c.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if c.ImportBatchSize < 1 || c.ImportBatchSize > client.MaxBatchSize {
		return fmt.Errorf("import batch size must be between 1 and %d, got %d", client.MaxBatchSize, c.ImportBatchSize)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.CommitRate < 0 {
		return fmt.Errorf("commit rate must not be negative")
	}
	return nil
}

// Load builds a Config from defaults, the file named by f.ConfigFile and the
// flags for which changed reports true. The result is validated.
func Load(f *Flags, changed func(name string) bool) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if f.ConfigFile != "" {
		if err := loadFile(cfg, f.ConfigFile); err != nil {
			return nil, err
		}
	}
	f.apply(cfg, changed)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
