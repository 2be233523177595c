// Package config loads runtime configuration for the medsupply CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config. Files ending in .yaml or
//     .yml are read as YAML, anything else as JSON.
//  3. Command-line flags explicitly set by the user.
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "store_backend": "grpc",
//	  "redis_addr": "127.0.0.1:6379",
//	  "access_token": "...",
//	  "user_id": "nurse-01",
//	  "database_path": "/var/lib/medsupply/cache.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "import_batch_size": 500,
//	  "commit_rate": 2,
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables directly.
package config
