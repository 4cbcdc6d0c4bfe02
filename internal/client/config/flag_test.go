package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "endpoint and interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10"},
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", OnlineCheckInterval: 10 * time.Second,
				User: models.User{Role: models.RoleStudent}}},
		{name: "profile and storage", args: []string{"cmd", "-d", "/tmp/r.db", "-r", "s3", "-u", "t-9", "-dep", "EEE", "-role", "teacher", "-ti", "MHR", "-x", "ignored"},
			expected: &Config{DatabasePath: "/tmp/r.db", Remote: "s3",
				User: models.User{ID: "t-9", Department: "EEE", Role: models.RoleTeacher, Initial: "MHR"}}},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
		{name: "unknown role", args: []string{"cmd", "-role", "dean"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{User: models.User{Role: models.RoleStudent}}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
