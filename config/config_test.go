package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_PATH", "ABSENCE_THRESHOLD", "NOTIFY_DEDUPE", "PDF_ENGINE", "TIMEZONE", "REDIS_ADDR", "REDIS_DB"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "attendance.db", cfg.DatabasePath)
	require.Equal(t, 3, cfg.AbsenceThreshold)
	require.False(t, cfg.NotifyDedupe)
	require.Equal(t, PDFEngineGoFPDF, cfg.PDFEngine)
	require.Equal(t, "Asia/Jakarta", cfg.Timezone.String())
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("ABSENCE_THRESHOLD", "three")
	t.Setenv("NOTIFY_DEDUPE", "true")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PDF_ENGINE", "wkhtmltopdf")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ABSENCE_THRESHOLD")
	require.Contains(t, err.Error(), "NOTIFY_DEDUPE requires REDIS_ADDR")
	require.Contains(t, err.Error(), "PDF_ENGINE")
}

func TestLoadDotEnv(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.False(t, loaded)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ABSENSI_TEST_PORT=9090\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ABSENSI_TEST_PORT") })
	loaded, err = LoadDotEnv(path)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "9090", GetEnv("ABSENSI_TEST_PORT"))
}
