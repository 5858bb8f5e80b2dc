package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "deletionguard/pkg/domain-errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Quota.Defaults.Daily)
	assert.Equal(t, 200, cfg.Quota.Defaults.Weekly)
	assert.Equal(t, 500, cfg.Quota.Defaults.Monthly)
	assert.Equal(t, 10000, cfg.Ledger.GlobalMax)
	assert.Equal(t, 24*time.Hour, cfg.Ledger.MaxAge)
	assert.Equal(t, time.Hour, cfg.Cleanup.Interval)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero ledger":        func(c *Config) { c.Ledger.PerUserMax = 0 },
		"zero quota":         func(c *Config) { c.Quota.Defaults.Weekly = 0 },
		"nil location":       func(c *Config) { c.Quota.Location = nil },
		"inverted threshold": func(c *Config) { c.Abuse.ThrottleThreshold = 90 },
		"zero block":         func(c *Config) { c.Abuse.DefaultBlockDuration = 0 },
		"zero interval":      func(c *Config) { c.Cleanup.Interval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		})
	}
}
