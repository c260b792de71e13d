package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("EASYCARS_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "EASYCARS_CONFLICT_STRATEGY", "EASYCARS_HTTP_TIMEOUT_SECONDS",
		"EASYCARS_IMAGE_SYNC_ENABLED", "EASYCARS_RUN_GUARD", "TEMPORAL_DISABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, domain.StrategyRemoteWins, cfg.ConflictStrategy)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Nil(t, cfg.ImageSyncOverride)
	require.False(t, cfg.RunGuard)
	require.False(t, cfg.TemporalDisabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EASYCARS_CONFLICT_STRATEGY", "manualreview")
	t.Setenv("EASYCARS_HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("EASYCARS_IMAGE_SYNC_ENABLED", "false")
	t.Setenv("EASYCARS_RUN_GUARD", "yes")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, domain.StrategyManualReview, cfg.ConflictStrategy)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.NotNil(t, cfg.ImageSyncOverride)
	require.False(t, *cfg.ImageSyncOverride)
	require.True(t, cfg.RunGuard)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"EASYCARS_CONFLICT_STRATEGY":    "FirstWins",
		"EASYCARS_HTTP_TIMEOUT_SECONDS": "-1",
		"EASYCARS_ENCRYPTION_KEY":       "",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadConfigReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("UPLOAD_SERVICE_URL=https://uploads.example/api\nPORT=9999\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("UPLOAD_SERVICE_URL", "")
	os.Unsetenv("UPLOAD_SERVICE_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://uploads.example/api", cfg.UploadServiceURL)
	require.Equal(t, "7070", cfg.Port)
}
