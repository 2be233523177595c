package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig    = "config"
	FlagAddr      = "addr"
	FlagStore     = "store"
	FlagRedis     = "redis"
	FlagUser      = "user"
	FlagToken     = "token"
	FlagDB        = "db"
	FlagLogLevel  = "log-level"
	FlagInterval  = "check-interval"
	FlagTimeout   = "timeout"
	FlagBatchSize = "batch-size"
	FlagRate      = "commit-rate"
)

// Flags receives the global command-line flags before the config is built.
type Flags struct {
	ConfigFile          string
	ServerEndpointAddr  string
	StoreBackend        string
	RedisAddr           string
	UserID              string
	AccessToken         string
	DatabasePath        string
	LogLevel            string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	ImportBatchSize     int
	CommitRate          float64
}

// Register declares the flags on fs with the built-in defaults shown in help.
func (f *Flags) Register(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringVarP(&f.ConfigFile, FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringVarP(&f.ServerEndpointAddr, FlagAddr, "a", d.ServerEndpointAddr, "address and port of the document store server")
	fs.StringVar(&f.StoreBackend, FlagStore, d.StoreBackend, "remote store backend: grpc, redis or memory")
	fs.StringVar(&f.RedisAddr, FlagRedis, d.RedisAddr, "redis address for the redis backend")
	fs.StringVarP(&f.UserID, FlagUser, "u", d.UserID, "user id used for fetch markers and audit fields")
	fs.StringVar(&f.AccessToken, FlagToken, d.AccessToken, "access token for the document store server")
	fs.StringVar(&f.DatabasePath, FlagDB, d.DatabasePath, "path of the local cache database")
	fs.StringVar(&f.LogLevel, FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.DurationVar(&f.OnlineCheckInterval, FlagInterval, d.OnlineCheckInterval, "connectivity check interval")
	fs.DurationVar(&f.RequestTimeout, FlagTimeout, d.RequestTimeout, "remote request timeout")
	fs.IntVar(&f.ImportBatchSize, FlagBatchSize, d.ImportBatchSize, "records per import commit")
	fs.Float64Var(&f.CommitRate, FlagRate, d.CommitRate, "import commits per second, 0 for unlimited")
}

// apply copies the explicitly set flags into cfg.
func (f *Flags) apply(cfg *Config, changed func(string) bool) {
	if changed == nil {
		return
	}
	if changed(FlagAddr) {
		cfg.ServerEndpointAddr = f.ServerEndpointAddr
	}
	if changed(FlagStore) {
		cfg.StoreBackend = f.StoreBackend
	}
	if changed(FlagRedis) {
		cfg.RedisAddr = f.RedisAddr
	}
	if changed(FlagUser) {
		cfg.UserID = f.UserID
	}
	if changed(FlagToken) {
		cfg.AccessToken = f.AccessToken
	}
	if changed(FlagDB) {
		cfg.DatabasePath = f.DatabasePath
	}
	if changed(FlagLogLevel) {
		cfg.LogLevel = f.LogLevel
	}
	if changed(FlagInterval) {
		cfg.OnlineCheckInterval = f.OnlineCheckInterval
	}
	if changed(FlagTimeout) {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if changed(FlagBatchSize) {
		cfg.ImportBatchSize = f.ImportBatchSize
	}
	if changed(FlagRate) {
		cfg.CommitRate = f.CommitRate
	}
}
