// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/scan.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/albapepper/campus-reminders/internal/apperr"
	"github.com/albapepper/campus-reminders/internal/email"
	"github.com/albapepper/campus-reminders/internal/reminders"
)

// --------------------------------------------------------------------------
// Table names, matching migrations
// --------------------------------------------------------------------------

const (
	UsersTable    = "users"
	ScanRunsTable = "scan_runs"
)

// ScanChannel is the Postgres NOTIFY channel that requests an immediate scan.
const ScanChannel = "scan_requested"

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Scheduling
	Location              *time.Location
	LabKeywords           []string
	AssignmentLead        time.Duration
	ContestLead           time.Duration
	DefaultLabLeadMinutes int

	// Scan
	ScanWorkers     int
	ScanUserTimeout time.Duration
	ScanDeadline    time.Duration
	ScanSecret      string
	ScanCron        string
	ScanListen      bool

	// Email
	EmailProvider  string
	SendGridAPIKey string
	BrevoAPIKey    string
	EmailFrom      string
	EmailFromName  string

	// Contests
	ClistAPIUser              string
	ClistAPIKey               string
	ClistBaseURL              string
	ClistRequestsPerMinute    int
	ContestPredictionsEnabled bool
	ContestCacheTTL           time.Duration
	RedisURL                  string

	// Maintenance
	LedgerRetention  time.Duration
	ScanRunRetention time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("POSTGRES_URL", ""))
	if dbURL == "" {
		return nil, apperr.Config("DATABASE_URL", "DATABASE_URL or POSTGRES_URL must be set")
	}

	zone := envOr("SCHEDULE_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, apperr.Config("SCHEDULE_TIMEZONE", fmt.Sprintf("unknown time zone %q: %v", zone, err))
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		Location:              loc,
		LabKeywords:           envList("LAB_KEYWORDS", reminders.DefaultLabKeywords),
		AssignmentLead:        time.Duration(envInt("ASSIGNMENT_LEAD_HOURS", 24)) * time.Hour,
		ContestLead:           time.Duration(envInt("CONTEST_LEAD_MINUTES", 60)) * time.Minute,
		DefaultLabLeadMinutes: envInt("DEFAULT_LAB_LEAD_MINUTES", reminders.DefaultLabLeadMinutes),

		ScanWorkers:     envInt("SCAN_WORKERS", reminders.DefaultWorkers),
		ScanUserTimeout: time.Duration(envInt("SCAN_USER_TIMEOUT_SECONDS", 30)) * time.Second,
		ScanDeadline:    time.Duration(envInt("SCAN_DEADLINE_SECONDS", 240)) * time.Second,
		ScanSecret:      envOr("SCAN_SECRET", envOr("CRON_SECRET", "")),
		ScanCron:        envOr("SCAN_CRON", "*/5 * * * *"),
		ScanListen:      envBool("SCAN_LISTEN_ENABLED", true),

		EmailProvider:  strings.ToLower(envOr("EMAIL_PROVIDER", "sendgrid")),
		SendGridAPIKey: envOr("SENDGRID_API_KEY", ""),
		BrevoAPIKey:    envOr("BREVO_API_KEY", ""),
		EmailFrom:      envOr("EMAIL_FROM", ""),
		EmailFromName:  envOr("EMAIL_FROM_NAME", "Campus Reminders"),

		ClistAPIUser:              envOr("CLIST_API_USER", ""),
		ClistAPIKey:               envOr("CLIST_API_KEY", ""),
		ClistBaseURL:              envOr("CLIST_BASE_URL", "https://clist.by/api/v4"),
		ClistRequestsPerMinute:    envInt("CLIST_REQUESTS_PER_MINUTE", 10),
		ContestPredictionsEnabled: envBool("CONTEST_PREDICTIONS_ENABLED", true),
		ContestCacheTTL:           time.Duration(envInt("CONTEST_CACHE_TTL_MINUTES", 30)) * time.Minute,
		RedisURL:                  envOr("REDIS_URL", ""),

		LedgerRetention:  time.Duration(envInt("LEDGER_RETENTION_DAYS", 14)) * 24 * time.Hour,
		ScanRunRetention: time.Duration(envInt("SCAN_RUN_RETENTION_DAYS", 30)) * 24 * time.Hour,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true for local development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ScanConfig maps the environment onto the scan job's settings.
func (c *Config) ScanConfig() reminders.Config {
	return reminders.Config{
		Location:              c.Location,
		LabKeywords:           c.LabKeywords,
		AssignmentLead:        c.AssignmentLead,
		ContestLead:           c.ContestLead,
		DefaultLabLeadMinutes: c.DefaultLabLeadMinutes,
		Workers:               c.ScanWorkers,
		UserTimeout:           c.ScanUserTimeout,
		Deadline:              c.ScanDeadline,
	}
}

// EmailSettings returns the email provider selection and credentials.
func (c *Config) EmailSettings() email.Settings {
	return email.Settings{
		Provider:       c.EmailProvider,
		SendGridAPIKey: c.SendGridAPIKey,
		BrevoAPIKey:    c.BrevoAPIKey,
		FromEmail:      c.EmailFrom,
		FromName:       c.EmailFromName,
	}
}

// RequireScanSecret returns a ConfigurationError when no trigger secret is
// set. Triggers must never run unauthenticated.
func (c *Config) RequireScanSecret() error {
	if strings.TrimSpace(c.ScanSecret) == "" {
		return apperr.Config("SCAN_SECRET", "trigger secret not configured")
	}
	return nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
