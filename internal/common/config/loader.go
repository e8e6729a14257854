// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the environment, optionally seeded from a
// .env file. All keys follow the deployment's variable names (GAS_WEBAPP_URL,
// TWILIO_ACCOUNT_SID, ...).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("TWILIO_API_BASE", "https://api.twilio.com")
	v.SetDefault("TEST_CALENDAR_ID", "primary")
	v.SetDefault("DEFAULT_TZ", "Asia/Tokyo")
	v.SetDefault("DISPATCH_WORKERS", 1)
	v.SetDefault("DISPATCH_QUEUE", 64)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Server: ServerConfig{
			Addr:          v.GetString("SERVER_ADDR"),
			AllowedOrigin: v.GetString("ALLOWED_ORIGIN"),
		},
		Sheets: SheetsConfig{
			WebAppURL: v.GetString("GAS_WEBAPP_URL"),
			AuthToken: v.GetString("GAS_AUTH_TOKEN"),
		},
		Twilio: TwilioConfig{
			AccountSID:          v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:           v.GetString("TWILIO_AUTH_TOKEN"),
			MessagingServiceSID: v.GetString("TWILIO_MESSAGING_SERVICE_SID"),
			FromNumber:          v.GetString("TWILIO_FROM_NUMBER"),
			APIBase:             v.GetString("TWILIO_API_BASE"),
		},
		Calendar: CalendarConfig{
			CalendarID:       v.GetString("TEST_CALENDAR_ID"),
			Timezone:         v.GetString("DEFAULT_TZ"),
			InterviewerEmail: v.GetString("INTERVIEWER_EMAIL"),
		},
		Dispatch: DispatchConfig{
			Workers:   v.GetInt("DISPATCH_WORKERS"),
			QueueSize: v.GetInt("DISPATCH_QUEUE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so
// the server behaves the same when launched from cmd/server or from tests.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func validateConfig(cfg *Config) error {
	var missing []string

	if cfg.Sheets.WebAppURL == "" {
		missing = append(missing, "GAS_WEBAPP_URL")
	}
	if cfg.Sheets.AuthToken == "" {
		missing = append(missing, "GAS_AUTH_TOKEN")
	}
	if cfg.Twilio.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if cfg.Twilio.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if cfg.Twilio.MessagingServiceSID == "" && cfg.Twilio.FromNumber == "" {
		return fmt.Errorf("either TWILIO_MESSAGING_SERVICE_SID or TWILIO_FROM_NUMBER must be set")
	}

	if cfg.Dispatch.Workers < 1 {
		cfg.Dispatch.Workers = 1
	}
	if cfg.Dispatch.QueueSize < 1 {
		cfg.Dispatch.QueueSize = 64
	}

	return nil
}
