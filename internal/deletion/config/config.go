// Package config holds the deletion guard's domain defaults.
package config

import (
	"time"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
)

type Config struct {
	Ledger  LedgerConfig
	Quota   QuotaConfig
	Abuse   AbuseConfig
	Cleanup CleanupConfig
}

// LedgerConfig bounds attempt history.
type LedgerConfig struct {
	PerUserMax int           // 1,000 attempts retained per user
	GlobalMax  int           // 10,000 attempts retained across users
	MaxAge     time.Duration // 24h
}

// QuotaConfig sets default per-user limits and the timezone calendar
// periods roll over in.
type QuotaConfig struct {
	Defaults models.QuotaLimits
	Location *time.Location
	// IdleTTL drops quota records untouched for longer than this.
	IdleTTL time.Duration
}

// AbuseConfig sets the score thresholds that map to actions.
type AbuseConfig struct {
	BlockThreshold       int
	ThrottleThreshold    int
	ReviewThreshold      int
	DefaultBlockDuration time.Duration
}

type CleanupConfig struct {
	Interval time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			PerUserMax: 1000,
			GlobalMax:  10000,
			MaxAge:     24 * time.Hour,
		},
		Quota: QuotaConfig{
			Defaults: models.QuotaLimits{Daily: 50, Weekly: 200, Monthly: 500},
			Location: time.UTC,
			IdleTTL:  32 * 24 * time.Hour,
		},
		Abuse: AbuseConfig{
			BlockThreshold:       80,
			ThrottleThreshold:    60,
			ReviewThreshold:      40,
			DefaultBlockDuration: 24 * time.Hour,
		},
		Cleanup: CleanupConfig{
			Interval: time.Hour,
		},
	}
}

// Validate rejects settings that would make the guard unbounded or inert.
func (c *Config) Validate() error {
	if c.Ledger.PerUserMax <= 0 || c.Ledger.GlobalMax <= 0 || c.Ledger.MaxAge <= 0 {
		return dErrors.New(dErrors.CodeConfiguration, "ledger bounds must be positive")
	}
	if err := c.Quota.Defaults.Validate(); err != nil {
		return err
	}
	if c.Quota.Location == nil {
		return dErrors.New(dErrors.CodeConfiguration, "quota location is required")
	}
	a := c.Abuse
	if !(a.ReviewThreshold > 0 && a.ReviewThreshold <= a.ThrottleThreshold && a.ThrottleThreshold <= a.BlockThreshold && a.BlockThreshold <= 100) {
		return dErrors.New(dErrors.CodeConfiguration, "abuse thresholds must satisfy 0 < review <= throttle <= block <= 100")
	}
	if a.DefaultBlockDuration <= 0 {
		return dErrors.New(dErrors.CodeConfiguration, "abuse block duration must be positive")
	}
	if c.Cleanup.Interval <= 0 {
		return dErrors.New(dErrors.CodeConfiguration, "cleanup interval must be positive")
	}
	return nil
}
