package finalizeapplication

import (
	"fmt"
	"time"

	"murmax-onboarding/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UploadLimitMB int           `mapstructure:"upload_limit_mb"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		UploadLimitMB: 10,
	}
}

// FromWorkerConfig applies the shared worker settings from the service
// configuration.
func FromWorkerConfig(wc config.WorkerConfig, uploadLimitMB int) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if uploadLimitMB > 0 {
		cfg.UploadLimitMB = uploadLimitMB
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.UploadLimitMB <= 0 {
		return fmt.Errorf("upload_limit_mb must be positive")
	}
	return nil
}
