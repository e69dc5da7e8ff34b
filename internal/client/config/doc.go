// Package config loads runtime configuration for the RecipeBox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the RecipeBox API
//	-l int      recipes per page
//	-t int      request timeout (seconds)
//	-r int      retries per request
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "page_limit": 20,
//	  "request_timeout": "10s",
//	  "retry_max": 2
//	}
package config
