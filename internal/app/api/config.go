package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

// Config carries environment-driven settings shared by the API, worker and CLI processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	ConflictStrategy  domain.ConflictStrategy
	EncryptionKey     string
	TestBaseURL       string
	ProductionBaseURL string
	HTTPTimeout       time.Duration
	UploadServiceURL  string
	FeatureFlagsFile  string
	// ImageSyncOverride forces the image-sync flag when EASYCARS_IMAGE_SYNC_ENABLED is set.
	ImageSyncOverride *bool
	RunGuard          bool
}

// LoadConfig reads an optional .env file (ENV_FILE, default ".env"), then environment variables,
// applies defaults, and validates basic constraints. Real environment variables win over the file.
func LoadConfig() (Config, error) {
	if err := loadDotEnv(envDefault("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		EncryptionKey:     strings.TrimSpace(os.Getenv("EASYCARS_ENCRYPTION_KEY")),
		TestBaseURL:       strings.TrimSpace(os.Getenv("EASYCARS_TEST_BASE_URL")),
		ProductionBaseURL: strings.TrimSpace(os.Getenv("EASYCARS_PRODUCTION_BASE_URL")),
		HTTPTimeout:       30 * time.Second,
		UploadServiceURL:  strings.TrimSpace(os.Getenv("UPLOAD_SERVICE_URL")),
		FeatureFlagsFile:  strings.TrimSpace(os.Getenv("FEATURE_FLAGS_FILE")),
		RunGuard:          isTruthy(os.Getenv("EASYCARS_RUN_GUARD")),
	}
	if cfg.EncryptionKey == "" {
		return Config{}, errors.New("EASYCARS_ENCRYPTION_KEY is required")
	}
	strategy, ok := domain.ParseConflictStrategy(os.Getenv("EASYCARS_CONFLICT_STRATEGY"))
	if !ok && strings.TrimSpace(os.Getenv("EASYCARS_CONFLICT_STRATEGY")) != "" {
		return Config{}, fmt.Errorf("EASYCARS_CONFLICT_STRATEGY must be RemoteWins, LocalWins or ManualReview")
	}
	cfg.ConflictStrategy = strategy
	if raw := strings.TrimSpace(os.Getenv("EASYCARS_HTTP_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("EASYCARS_HTTP_TIMEOUT_SECONDS must be a positive integer")
		}
		cfg.HTTPTimeout = time.Duration(seconds) * time.Second
	}
	if raw := strings.TrimSpace(os.Getenv("EASYCARS_IMAGE_SYNC_ENABLED")); raw != "" {
		enabled := isTruthy(raw)
		cfg.ImageSyncOverride = &enabled
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
