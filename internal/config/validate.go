package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/pillbox/internal/middleware"
)

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535 (got %d)", c.Server.Port)
	}
	if _, err := middleware.NewIPResolver(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	if c.Cabinet.CategoryLimit < 0 {
		return fmt.Errorf("cabinet.category_limit must be >= 0 (got %d)", c.Cabinet.CategoryLimit)
	}
	if c.Cabinet.HistoryLimit < 0 {
		return fmt.Errorf("cabinet.history_limit must be >= 0 (got %d)", c.Cabinet.HistoryLimit)
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("rate_limit.per_minute must be >= 0 (got %d)", c.RateLimit.PerMinute)
	}
	if err := c.Schedule.validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Notify.validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.Backup.validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

func (s *ScheduleConfig) validate() error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	specs := map[string]string{"refill": s.Refill, "due": s.Due, "low_stock": s.LowStock, "backup": s.Backup}
	for name, spec := range specs {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Location resolves the configured timezone. Validate has already checked it.
func (s ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (n *NotifyConfig) validate() error {
	if n.Twilio.Enabled() {
		if n.Twilio.AccountSID == "" || n.Twilio.AuthToken == "" || n.Twilio.From == "" || n.Twilio.To == "" {
			return fmt.Errorf("twilio needs account_sid, auth_token, from and to")
		}
	}
	if n.Postmark.Enabled() {
		if n.Postmark.From == "" || n.Postmark.To == "" {
			return fmt.Errorf("postmark needs from and to")
		}
	}
	return nil
}

func (b *BackupConfig) validate() error {
	if !b.Enabled() {
		return nil
	}
	if b.AccessKey == "" || b.SecretKey == "" {
		return fmt.Errorf("access_key and secret_key are required with a bucket")
	}
	if len(b.Passphrase) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}
	if b.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be > 0 (got %d)", b.RetentionDays)
	}
	return nil
}
