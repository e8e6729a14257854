package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("GAS_WEBAPP_URL", "https://script.example.com/exec")
	t.Setenv("GAS_AUTH_TOKEN", "gas-token")
	t.Setenv("TWILIO_ACCOUNT_SID", "ACxxxx")
	t.Setenv("TWILIO_AUTH_TOKEN", "twilio-token")
	t.Setenv("TWILIO_FROM_NUMBER", "+815000000000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.AllowedOrigin)
	assert.Equal(t, "https://api.twilio.com", cfg.Twilio.APIBase)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)
	assert.Equal(t, "Asia/Tokyo", cfg.Calendar.Timezone)
	assert.Equal(t, 1, cfg.Dispatch.Workers)
	assert.Equal(t, 64, cfg.Dispatch.QueueSize)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("GAS_WEBAPP_URL", "")
	t.Setenv("GAS_AUTH_TOKEN", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GAS_WEBAPP_URL")
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID")
}

func TestLoad_RequiresSenderIdentity(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TWILIO_FROM_NUMBER", "")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_MESSAGING_SERVICE_SID or TWILIO_FROM_NUMBER")
}

func TestLoad_MessagingServiceAlone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TWILIO_FROM_NUMBER", "")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID", "MGxxxx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "MGxxxx", cfg.Twilio.MessagingServiceSID)
}
