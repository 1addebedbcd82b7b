package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Cabinet   CabinetConfig   `yaml:"cabinet"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Notify    NotifyConfig    `yaml:"notify"`
	Backup    BackupConfig    `yaml:"backup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"PILLBOX_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PILLBOX_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"PILLBOX_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"PILLBOX_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"PILLBOX_IDLE_TIMEOUT"     env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PILLBOX_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed. Empty
	// means clients are identified by their connection address only.
	TrustedProxies []string `yaml:"trusted_proxies" env:"PILLBOX_TRUSTED_PROXIES" env-separator:","`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"PILLBOX_DB_PATH" env-default:"pillbox.db"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"PILLBOX_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"PILLBOX_LOG_FORMAT" env-default:"text"`
}

// CabinetConfig caps the category list and undo history. Zero disables a cap.
type CabinetConfig struct {
	CategoryLimit int `yaml:"category_limit" env:"PILLBOX_CATEGORY_LIMIT" env-default:"10"`
	HistoryLimit  int `yaml:"history_limit"  env:"PILLBOX_HISTORY_LIMIT"  env-default:"20"`
}

// ScheduleConfig holds the cron specs (standard five-field) for background
// jobs. An empty spec disables that job.
type ScheduleConfig struct {
	Enabled  bool   `yaml:"enabled"   env:"PILLBOX_SCHEDULE_ENABLED" env-default:"true"`
	Timezone string `yaml:"timezone"  env:"PILLBOX_TIMEZONE"         env-default:"Local"`
	Refill   string `yaml:"refill"    env:"PILLBOX_CRON_REFILL"      env-default:"0 0 * * *"`
	Due      string `yaml:"due"       env:"PILLBOX_CRON_DUE"         env-default:"* * * * *"`
	LowStock string `yaml:"low_stock" env:"PILLBOX_CRON_LOW_STOCK"   env-default:"0 9 * * *"`
	Backup   string `yaml:"backup"    env:"PILLBOX_CRON_BACKUP"      env-default:"0 3 * * *"`
}

type NotifyConfig struct {
	Twilio   TwilioConfig   `yaml:"twilio"`
	Postmark PostmarkConfig `yaml:"postmark"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" env:"PILLBOX_TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token"  env:"PILLBOX_TWILIO_AUTH_TOKEN"`
	From       string `yaml:"from"        env:"PILLBOX_TWILIO_FROM"`
	To         string `yaml:"to"          env:"PILLBOX_TWILIO_TO"`
}

func (c TwilioConfig) Enabled() bool { return c.AccountSID != "" || c.AuthToken != "" }

type PostmarkConfig struct {
	ServerToken string `yaml:"server_token" env:"PILLBOX_POSTMARK_TOKEN"`
	From        string `yaml:"from"         env:"PILLBOX_POSTMARK_FROM"`
	To          string `yaml:"to"           env:"PILLBOX_POSTMARK_TO"`
}

func (c PostmarkConfig) Enabled() bool { return c.ServerToken != "" }

type BackupConfig struct {
	Endpoint      string `yaml:"endpoint"       env:"PILLBOX_S3_ENDPOINT"`
	Bucket        string `yaml:"bucket"         env:"PILLBOX_S3_BUCKET"`
	Region        string `yaml:"region"         env:"PILLBOX_S3_REGION"         env-default:"us-east-1"`
	AccessKey     string `yaml:"access_key"     env:"PILLBOX_S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key"     env:"PILLBOX_S3_SECRET_KEY"`
	Prefix        string `yaml:"prefix"         env:"PILLBOX_S3_PREFIX"         env-default:"pillbox"`
	Passphrase    string `yaml:"passphrase"     env:"PILLBOX_BACKUP_PASSPHRASE"`
	RetentionDays int    `yaml:"retention_days" env:"PILLBOX_BACKUP_RETENTION"  env-default:"30"`
}

func (c BackupConfig) Enabled() bool { return c.Bucket != "" }

type RateLimitConfig struct {
	// PerMinute limits mutating requests per client IP. Zero disables it.
	PerMinute int `yaml:"per_minute" env:"PILLBOX_RATE_LIMIT" env-default:"120"`
}
