package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"invoiceguard/internal/validator"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Parser     ParserConfig
	Validation ValidationConfig
	CORS       CORSConfig
	Queue      QueueConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Email      EmailConfig
}

// EmailConfig holds rejection notification settings.
type EmailConfig struct {
	Provider        string `mapstructure:"provider"`
	Region          string `mapstructure:"region"`
	FromAddress     string `mapstructure:"from_address"`
	FromName        string `mapstructure:"from_name"`
	ReviewerAddress string `mapstructure:"reviewer_address"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// Enabled reports whether bearer auth is required on the API.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// RateLimitConfig holds per-client upload rate limit settings.
// RequestsPerMinute <= 0 disables the limiter.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// ParserProviderConfig holds settings for a single extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds extraction provider settings.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	return &p.Primary
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// ValidationConfig holds the server-wide validation defaults.
type ValidationConfig struct {
	RequiredFields          []string `mapstructure:"required_fields"`
	MinAmount               float64  `mapstructure:"min_amount"`
	MaxAmount               float64  `mapstructure:"max_amount"`
	AllowFutureInvoiceDates bool     `mapstructure:"allow_future_invoice_dates"`
	MaxInvoiceAgeDays       int      `mapstructure:"max_invoice_age_days"`
	StrictMode              bool     `mapstructure:"strict_mode"`
	EnableAutoCorrection    bool     `mapstructure:"enable_auto_correction"`
	PaymentTermsMaxDays     int      `mapstructure:"payment_terms_max_days"`
	MaxTaxRatio             float64  `mapstructure:"max_tax_ratio"`
	BatchConcurrency        int      `mapstructure:"batch_concurrency"`
	MaxBatchSize            int      `mapstructure:"max_batch_size"`
	// UploadRules names registry business rules applied to uploaded invoices.
	UploadRules []string `mapstructure:"upload_rules"`
}

// ValidatorConfig converts the settings to a validator.Config.
func (v *ValidationConfig) ValidatorConfig() validator.Config {
	return validator.Config{
		RequiredFields:          append([]string(nil), v.RequiredFields...),
		MinAmount:               v.MinAmount,
		MaxAmount:               v.MaxAmount,
		AllowFutureInvoiceDates: v.AllowFutureInvoiceDates,
		MaxInvoiceAgeDays:       v.MaxInvoiceAgeDays,
		StrictMode:              v.StrictMode,
		EnableAutoCorrection:    v.EnableAutoCorrection,
		PaymentTermsMaxDays:     v.PaymentTermsMaxDays,
		MaxTaxRatio:             v.MaxTaxRatio,
	}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "INVOICEGUARD"

// Load reads configuration from environment variables with the INVOICEGUARD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Bind environment variables explicitly for nested keys
	for _, key := range boundKeys {
		_ = v.BindEnv(key, envName(key))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOICEGUARD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Parser = ParserConfig{
		Primary:   providerConfig(v, "parser.primary"),
		Secondary: providerConfig(v, "parser.secondary"),
	}
	cfg.Validation = ValidationConfig{
		RequiredFields:          splitList(v.GetString("validation.required_fields")),
		MinAmount:               v.GetFloat64("validation.min_amount"),
		MaxAmount:               v.GetFloat64("validation.max_amount"),
		AllowFutureInvoiceDates: v.GetBool("validation.allow_future_invoice_dates"),
		MaxInvoiceAgeDays:       v.GetInt("validation.max_invoice_age_days"),
		StrictMode:              v.GetBool("validation.strict_mode"),
		EnableAutoCorrection:    v.GetBool("validation.enable_auto_correction"),
		PaymentTermsMaxDays:     v.GetInt("validation.payment_terms_max_days"),
		MaxTaxRatio:             v.GetFloat64("validation.max_tax_ratio"),
		BatchConcurrency:        v.GetInt("validation.batch_concurrency"),
		MaxBatchSize:            v.GetInt("validation.max_batch_size"),
		UploadRules:             splitList(v.GetString("validation.upload_rules")),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerMinute: v.GetInt("rate_limit.requests_per_minute"),
		Burst:             v.GetInt("rate_limit.burst"),
	}
	cfg.Email = EmailConfig{
		Provider:        v.GetString("email.provider"),
		Region:          v.GetString("email.region"),
		FromAddress:     v.GetString("email.from_address"),
		FromName:        v.GetString("email.from_name"),
		ReviewerAddress: v.GetString("email.reviewer_address"),
	}

	vc := cfg.Validation.ValidatorConfig()
	if err := vc.Check(); err != nil {
		return nil, fmt.Errorf("invalid validation config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoiceguard")
	v.SetDefault("db.password", "invoiceguard_secret")
	v.SetDefault("db.name", "invoiceguard_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoiceguard-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults
	v.SetDefault("parser.primary.provider", "claude")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.max_retries", 2)
	v.SetDefault("parser.secondary.timeout_secs", 120)

	// Validation defaults mirror validator.DefaultConfig
	def := validator.DefaultConfig()
	v.SetDefault("validation.required_fields", strings.Join(def.RequiredFields, ","))
	v.SetDefault("validation.min_amount", def.MinAmount)
	v.SetDefault("validation.max_amount", def.MaxAmount)
	v.SetDefault("validation.allow_future_invoice_dates", def.AllowFutureInvoiceDates)
	v.SetDefault("validation.max_invoice_age_days", def.MaxInvoiceAgeDays)
	v.SetDefault("validation.strict_mode", def.StrictMode)
	v.SetDefault("validation.enable_auto_correction", def.EnableAutoCorrection)
	v.SetDefault("validation.payment_terms_max_days", def.PaymentTermsMaxDays)
	v.SetDefault("validation.max_tax_ratio", def.MaxTaxRatio)
	v.SetDefault("validation.batch_concurrency", 8)
	v.SetDefault("validation.max_batch_size", 500)
	v.SetDefault("validation.upload_rules", "")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "invoiceguard")

	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@invoiceguard.local")
	v.SetDefault("email.from_name", "InvoiceGuard")
	v.SetDefault("email.reviewer_address", "")
}

var boundKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout", "server.environment",
	"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode", "db.max_open", "db.max_idle",
	"s3.region", "s3.bucket", "s3.endpoint", "s3.access_key", "s3.secret_key", "s3.max_file_size_mb", "s3.presign_expiry",
	"log.level", "log.format",
	"cors.allowed_origins",
	"parser.primary.provider", "parser.primary.api_key", "parser.primary.default_model",
	"parser.primary.max_retries", "parser.primary.timeout_secs",
	"parser.secondary.provider", "parser.secondary.api_key", "parser.secondary.default_model",
	"parser.secondary.max_retries", "parser.secondary.timeout_secs",
	"validation.required_fields", "validation.min_amount", "validation.max_amount",
	"validation.allow_future_invoice_dates", "validation.max_invoice_age_days",
	"validation.strict_mode", "validation.enable_auto_correction",
	"validation.payment_terms_max_days", "validation.max_tax_ratio",
	"validation.batch_concurrency", "validation.max_batch_size", "validation.upload_rules",
	"queue.poll_interval_secs", "queue.max_retries", "queue.concurrency",
	"auth.jwt_secret", "auth.issuer",
	"rate_limit.requests_per_minute", "rate_limit.burst",
	"email.provider", "email.region", "email.from_address", "email.from_name", "email.reviewer_address",
}

// envName maps a config key to its environment variable, e.g.
// "db.max_open" -> "INVOICEGUARD_DB_MAX_OPEN".
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func providerConfig(v *viper.Viper, prefix string) ParserProviderConfig {
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
