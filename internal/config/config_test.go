package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

// chdir moves into an empty directory so no stray .env or config.yaml is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Path != "pillbox.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Cabinet.CategoryLimit != 10 || cfg.Cabinet.HistoryLimit != 20 {
		t.Errorf("cabinet = %+v", cfg.Cabinet)
	}
	if cfg.Schedule.Refill != "0 0 * * *" || cfg.Schedule.Due != "* * * * *" {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Backup.Enabled() || cfg.Notify.Twilio.Enabled() || cfg.Notify.Postmark.Enabled() {
		t.Error("expected integrations disabled by default")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := chdir(t)
	path := writeYAML(t, dir, `
server:
  port: 9090
  trusted_proxies: ["10.0.0.0/8", "192.168.1.10"]
database:
  path: "/data/cabinet.db"
cabinet:
  history_limit: 50
schedule:
  timezone: "UTC"
`)
	t.Setenv("PILLBOX_CONFIG", path)
	t.Setenv("PILLBOX_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/cabinet.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Cabinet.HistoryLimit != 50 {
		t.Errorf("history limit = %d, want 50", cfg.Cabinet.HistoryLimit)
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[1] != "192.168.1.10" {
		t.Errorf("trusted proxies = %v", cfg.Server.TrustedProxies)
	}
	if cfg.Schedule.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Schedule.Location())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PILLBOX_HISTORY_LIMIT=5\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PILLBOX_HISTORY_LIMIT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cabinet.HistoryLimit != 5 {
		t.Errorf("history limit = %d, want 5 from .env", cfg.Cabinet.HistoryLimit)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	t.Setenv("PILLBOX_CONFIG", "/nonexistent/config.yaml")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad cron", map[string]string{"PILLBOX_CRON_DUE": "every minute"}, "schedule: due"},
		{"bad timezone", map[string]string{"PILLBOX_TIMEZONE": "Mars/Olympus"}, "timezone"},
		{"bad trusted proxy", map[string]string{"PILLBOX_TRUSTED_PROXIES": "10.0.0.0/8,nope"}, "trusted_proxies"},
		{"bad log format", map[string]string{"PILLBOX_LOG_FORMAT": "xml"}, "log.format"},
		{"negative history", map[string]string{"PILLBOX_HISTORY_LIMIT": "-1"}, "history_limit"},
		{"partial twilio", map[string]string{"PILLBOX_TWILIO_ACCOUNT_SID": "AC1"}, "twilio"},
		{"postmark without to", map[string]string{"PILLBOX_POSTMARK_TOKEN": "tok", "PILLBOX_POSTMARK_FROM": "a@b.c"}, "postmark"},
		{"backup without keys", map[string]string{"PILLBOX_S3_BUCKET": "b"}, "access_key"},
		{"backup weak passphrase", map[string]string{
			"PILLBOX_S3_BUCKET": "b", "PILLBOX_S3_ACCESS_KEY": "k", "PILLBOX_S3_SECRET_KEY": "s",
			"PILLBOX_BACKUP_PASSPHRASE": "short",
		}, "passphrase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}
