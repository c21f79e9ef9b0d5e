package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Upload.MaxBytes)
				assert.Equal(t, DefaultMaxUploadFiles, cfg.Upload.MaxFiles)
				assert.Equal(t, DefaultDataDir, cfg.Upload.DataDir)
				assert.Equal(t, "none", cfg.Telemetry.TracingExporter)
			},
		},
		{
			name: "file overlays defaults",
			file: "server:\n  port: 9090\nupload:\n  max_files: 5\n  data_dir: /srv/tpo\nlogging:\n  level: debug\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5, cfg.Upload.MaxFiles)
				assert.Equal(t, "/srv/tpo", cfg.Upload.DataDir)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
			},
		},
		{
			name: "environment overrides file",
			env: map[string]string{
				"TPODASH_SERVER_PORT":              "7000",
				"TPODASH_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
				"TPODASH_TELEMETRY_TRACING_EXPORTER": "stdout",
			},
			file: "server:\n  port: 9090\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7000, cfg.Server.Port)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "stdout", cfg.Telemetry.TracingExporter)
			},
		},
		{
			name:    "invalid port rejected",
			env:     map[string]string{"TPODASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "non-positive upload limit rejected",
			file:    "upload:\n  max_files: 0\n",
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter rejected",
			env:     map[string]string{"TPODASH_TELEMETRY_TRACING_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""
	cfg.Upload.ExportDir = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
	assert.Equal(t, DefaultExportDir, cfg.Upload.ExportDir)
}

func TestValidate_CORSRequiresOrigins(t *testing.T) {
	cfg := Default()
	cfg.Security.AllowedOrigins = nil
	assert.Error(t, cfg.Validate())

	cfg.Security.EnableCORS = false
	assert.NoError(t, cfg.Validate())
}
