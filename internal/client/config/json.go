package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/flagx"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Absent fields keep the
// value loaded before.
type JsonConfig struct {
	ServerEndpointAddr    string         `json:"server_endpoint_addr"`
	OnlineCheckInterval   timex.Duration `json:"online_check_interval"`
	DatabasePath          string         `json:"database_path"`
	Remote                string         `json:"remote"`
	BackgroundSyncTimeout timex.Duration `json:"background_sync_timeout"`
	LogLevel              string         `json:"log_level"`

	S3 struct {
		Endpoint  string `json:"endpoint"`
		Region    string `json:"region"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		Bucket    string `json:"bucket"`
	} `json:"s3"`

	CacheTTL struct {
		Day          timex.Duration `json:"day"`
		FullSchedule timex.Duration `json:"full_schedule"`
		ActiveDays   timex.Duration `json:"active_days"`
		Week         timex.Duration `json:"week"`
	} `json:"cache_ttl"`

	User *models.User `json:"user"`
}

// parseJson overlays Config with values loaded from a JSON file named by
// -c or -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.Remote, jc.Remote)
	setDuration(&cfg.BackgroundSyncTimeout, jc.BackgroundSyncTimeout)
	setString(&cfg.LogLevel, jc.LogLevel)

	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)

	setDuration(&cfg.TTLs.Day, jc.CacheTTL.Day)
	setDuration(&cfg.TTLs.FullSchedule, jc.CacheTTL.FullSchedule)
	setDuration(&cfg.TTLs.ActiveDays, jc.CacheTTL.ActiveDays)
	setDuration(&cfg.TTLs.Week, jc.CacheTTL.Week)

	if jc.User != nil {
		cfg.User = *jc.User
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = time.Duration(v.Duration)
	}
}
