package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/campusroutine/internal/flagx"
	"github.com/dmitrijs2005/campusroutine/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration, which accepts both strings such
// as "1s" and integer nanoseconds. Keys missing from the file leave the
// current value alone, which is why the bool and int fields are pointers.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	RedisDB                     *int           `json:"redis_db"`
	SnapshotCacheTTL            timex.Duration `json:"snapshot_cache_ttl"`
	S3MirrorEnabled             *bool          `json:"s3_mirror_enabled"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	jc, err := readJSON(path)
	if err != nil {
		panic(err)
	}
	jc.apply(config)
}

func readJSON(path string) (*JsonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return jc, nil
}

func (jc *JsonConfig) apply(c *Config) {
	overlay(&c.EndpointAddrGRPC, jc.EndpointAddrGRPC)
	overlay(&c.DatabaseDSN, jc.DatabaseDSN)
	overlay(&c.SecretKey, jc.SecretKey)
	overlay(&c.AccessTokenValidityDuration, jc.AccessTokenValidityDuration.Duration)
	overlay(&c.RedisAddr, jc.RedisAddr)
	overlay(&c.RedisPassword, jc.RedisPassword)
	if jc.RedisDB != nil {
		c.RedisDB = *jc.RedisDB
	}
	overlay(&c.SnapshotCacheTTL, jc.SnapshotCacheTTL.Duration)
	if jc.S3MirrorEnabled != nil {
		c.S3MirrorEnabled = *jc.S3MirrorEnabled
	}
	overlay(&c.S3RootUser, jc.S3RootUser)
	overlay(&c.S3RootPassword, jc.S3RootPassword)
	overlay(&c.S3Bucket, jc.S3Bucket)
	overlay(&c.S3Region, jc.S3Region)
	overlay(&c.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&c.LogLevel, jc.LogLevel)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
