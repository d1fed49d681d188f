package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetenv clears a variable for the test and restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "hrops.yaml", `
http:
  addr: ":9090"
database:
  path: /var/lib/hrops/hrops.db
schedule:
  reminders: "30 5 * * 1-5"
company: Metro Access
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/var/lib/hrops/hrops.db", cfg.Database.Path)
	assert.Equal(t, "30 5 * * 1-5", cfg.Schedule.Reminders)
	assert.Equal(t, "0 1 1 10 *", cfg.Schedule.SickReset, "untouched keys keep their default")
	assert.Equal(t, "Metro Access", cfg.Company)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	path := writeFile(t, "hrops.yaml", "company: From File\n")
	t.Setenv("HROPS_COMPANY", "From Env")
	t.Setenv("HROPS_REDIS_DB", "3")
	t.Setenv("HROPS_SCHEDULE_ENABLED", "false")
	t.Setenv("HROPS_HTTP_ALLOWED_ORIGINS", "https://ops.example.com, https://hr.example.com")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "From Env", cfg.Company)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Schedule.Enabled)
	assert.Equal(t, []string{"https://ops.example.com", "https://hr.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_DotEnvFillsMissingVariables(t *testing.T) {
	unsetenv(t, "HROPS_DATABASE_PATH")
	t.Setenv("HROPS_COMPANY", "Already Set")
	env := writeFile(t, ".env", "HROPS_DATABASE_PATH=/tmp/from-dotenv.db\nHROPS_COMPANY=Ignored\n")
	t.Cleanup(func() { os.Unsetenv("HROPS_DATABASE_PATH") })

	cfg, err := Load("", env)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, "Already Set", cfg.Company)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))

	assert.NoError(t, err)
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad integer", "HROPS_REDIS_DB", "two", "HROPS_REDIS_DB"},
		{"bad bool", "HROPS_SCHEDULE_ENABLED", "sometimes", "HROPS_SCHEDULE_ENABLED"},
		{"unknown level", "HROPS_LOG_LEVEL", "loud", "Level"},
		{"empty company", "HROPS_COMPANY", "", "Company"},
		{"unknown timezone", "HROPS_SCHEDULE_TIMEZONE", "Mars/Olympus", "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load("", "")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")

	assert.Error(t, err)
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	log := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	log.Info("hidden")
	log.Warn("shown", "component", "test")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
