package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/medsupply/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file unmarshalling. Pointer
// fields distinguish "absent" from zero values.
type FileConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	StoreBackend        *string         `json:"store_backend" yaml:"store_backend"`
	RedisAddr           *string         `json:"redis_addr" yaml:"redis_addr"`
	AccessToken         *string         `json:"access_token" yaml:"access_token"`
	UserID              *string         `json:"user_id" yaml:"user_id"`
	DatabasePath        *string         `json:"database_path" yaml:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ImportBatchSize     *int            `json:"import_batch_size" yaml:"import_batch_size"`
	CommitRate          *float64        `json:"commit_rate" yaml:"commit_rate"`
	LogLevel            *string         `json:"log_level" yaml:"log_level"`
}

// loadFile overlays cfg with the values present in the file at path.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.StoreBackend, fc.StoreBackend)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.AccessToken, fc.AccessToken)
	setString(&cfg.UserID, fc.UserID)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.ImportBatchSize != nil {
		cfg.ImportBatchSize = *fc.ImportBatchSize
	}
	if fc.CommitRate != nil {
		cfg.CommitRate = *fc.CommitRate
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
