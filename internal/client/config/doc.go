// Package config loads runtime configuration for the CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API
//	-t int      request timeout (seconds)
//	-d string   session database path
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "base_url": "http://127.0.0.1:8080",
//	  "request_timeout": "30s",
//	  "database_path": "data/session.db",
//	  "log_level": "info"
//	}
//
// Environment variables are not read.
package config
