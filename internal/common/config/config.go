// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Twilio   TwilioConfig
	Calendar CalendarConfig
	Dispatch DispatchConfig
	Logging  LoggingConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
}

// SheetsConfig holds settings for the spreadsheet-backed remote store
// (a Google Apps Script web app fronting the sheets).
type SheetsConfig struct {
	WebAppURL string
	AuthToken string
}

// TwilioConfig holds credentials and sender identity for the SMS provider.
// MessagingServiceSID takes precedence over FromNumber when both are set.
type TwilioConfig struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	FromNumber          string
	APIBase             string
}

// CalendarConfig holds defaults for the free/busy and event-creation
// passthroughs.
type CalendarConfig struct {
	CalendarID       string
	Timezone         string
	InterviewerEmail string
}

// DispatchConfig sizes the inbound-reply background queue.
type DispatchConfig struct {
	Workers   int
	QueueSize int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}
