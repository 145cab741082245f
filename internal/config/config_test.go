package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/apperr"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_URL", "")

	_, err := Load()
	var cfgErr *apperr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DATABASE_URL", cfgErr.Setting)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reminders")
	t.Setenv("SCHEDULE_TIMEZONE", "")
	t.Setenv("SCAN_SECRET", "")
	t.Setenv("CRON_SECRET", "")
	t.Setenv("EMAIL_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, 24*time.Hour, cfg.AssignmentLead)
	assert.Equal(t, time.Hour, cfg.ContestLead)
	assert.Equal(t, 15, cfg.DefaultLabLeadMinutes)
	assert.Equal(t, []string{"LAB"}, cfg.LabKeywords)
	assert.Equal(t, "sendgrid", cfg.EmailProvider)
	assert.Equal(t, 240*time.Second, cfg.ScanDeadline)
	assert.True(t, cfg.IsDevelopment())

	err = cfg.RequireScanSecret()
	assert.True(t, apperr.IsFatal(err))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reminders")
	t.Setenv("SCHEDULE_TIMEZONE", "UTC")
	t.Setenv("LAB_KEYWORDS", "lab, practical ,")
	t.Setenv("ASSIGNMENT_LEAD_HOURS", "12")
	t.Setenv("SCAN_WORKERS", "8")
	t.Setenv("SCAN_SECRET", "")
	t.Setenv("CRON_SECRET", "legacy-secret")
	t.Setenv("EMAIL_PROVIDER", "Brevo")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"lab", "practical"}, cfg.LabKeywords)
	assert.Equal(t, 12*time.Hour, cfg.AssignmentLead)
	assert.Equal(t, "legacy-secret", cfg.ScanSecret)
	assert.NoError(t, cfg.RequireScanSecret())
	assert.Equal(t, "brevo", cfg.EmailSettings().Provider)
	assert.True(t, cfg.IsProduction())

	sc := cfg.ScanConfig()
	assert.Equal(t, 8, sc.Workers)
	assert.Equal(t, time.UTC, sc.Location)
}

func TestLoad_BadTimeZone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reminders")
	t.Setenv("SCHEDULE_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	var cfgErr *apperr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "SCHEDULE_TIMEZONE", cfgErr.Setting)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "TRUE")
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.True(t, envBool("X_BOOL", false))
	assert.Equal(t, []string{"a"}, envList("X_MISSING", []string{"a"}))
}
