package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/objectstore"
)

const (
	RemoteGRPC = "grpc"
	RemoteS3   = "s3"
)

// Config holds runtime settings for the routine CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the routine gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes remote reachability.
//   - DatabasePath: SQLite file holding the local snapshots.
//   - Remote: "grpc" or "s3", the remote data source to sync from.
//   - TTLs: in-memory cache lifetimes per kind.
//   - User: the profile routines are filtered for.
type Config struct {
	ServerEndpointAddr    string
	OnlineCheckInterval   time.Duration
	DatabasePath          string
	Remote                string
	S3                    objectstore.Config
	TTLs                  cache.TTLs
	BackgroundSyncTimeout time.Duration
	LogLevel              string
	User                  models.User
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "campusroutine.db"
	c.Remote = RemoteGRPC
	c.S3 = objectstore.Config{Region: "us-east-1", Bucket: "campusroutine"}
	c.TTLs = cache.DefaultTTLs()
	c.BackgroundSyncTimeout = 30 * time.Second
	c.LogLevel = "warn"
	c.User.Role = models.RoleStudent
}

// Validate reports every setting that would make the client unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Remote {
	case RemoteGRPC:
		if strings.TrimSpace(c.ServerEndpointAddr) == "" {
			errs = append(errs, errors.New("server endpoint is empty"))
		}
	case RemoteS3:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			errs = append(errs, errors.New("s3 bucket is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown remote %q", c.Remote))
	}

	for name, d := range map[string]time.Duration{
		"day":           c.TTLs.Day,
		"full schedule": c.TTLs.FullSchedule,
		"active days":   c.TTLs.ActiveDays,
		"week":          c.TTLs.Week,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s ttl must be positive", name))
		}
	}

	if err := c.User.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrValidation, errors.Join(errs...))
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
