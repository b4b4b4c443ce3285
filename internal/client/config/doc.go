// Package config loads runtime configuration for judgectl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the judge HTTP API
//	-d string   directory for saved tokens
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_addr": "http://127.0.0.1:8080",
//	  "data_dir": ".judgectl",
//	  "request_timeout": "10s"
//	}
package config
