// Package config loads runtime configuration for the routine CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_path": "campusroutine.db",
//	  "remote": "grpc",
//	  "cache_ttl": {"day": "5m", "full_schedule": "30m", "active_days": "30m", "week": "10m"},
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "campusroutine"},
//	  "user": {"id": "s-1", "department": "CSE", "role": "student", "batch": "61", "section": "J"}
//	}
//
// This package does not read environment variables directly; use the JSON
// file or flags.
package config
