package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	commonerrors "intake-relay/internal/common/errors"
	commonhttp "intake-relay/internal/common/http"
	"intake-relay/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedSend struct {
	Form      url.Values
	Path      string
	BasicUser string
	BasicPass string
}

func newSendServer(t *testing.T, status int, response string, captured *capturedSend) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		captured.Form = r.PostForm
		captured.Path = r.URL.Path
		captured.BasicUser, captured.BasicPass, _ = r.BasicAuth()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(apiBase string) Config {
	return Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+815000000000",
		APIBase:    apiBase,
	}
}

func TestSend_Success(t *testing.T) {
	var captured capturedSend
	server := newSendServer(t, http.StatusCreated, `{"sid":"SM123","status":"queued"}`, &captured)

	client := NewClient(testConfig(server.URL), commonhttp.NewClient(5*time.Second), logger.NewTestLogger(t))
	result, err := client.Send(context.Background(), "+819012345678", "hello")
	require.NoError(t, err)

	assert.Equal(t, "SM123", result.Sid)
	assert.Equal(t, "queued", result.Status)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", captured.Path)
	assert.Equal(t, "AC123", captured.BasicUser)
	assert.Equal(t, "secret", captured.BasicPass)
	assert.Equal(t, "+819012345678", captured.Form.Get("To"))
	assert.Equal(t, "hello", captured.Form.Get("Body"))
	assert.Equal(t, "+815000000000", captured.Form.Get("From"))
	assert.Empty(t, captured.Form.Get("MessagingServiceSid"))
}

func TestSend_MessagingServicePoolWins(t *testing.T) {
	var captured capturedSend
	server := newSendServer(t, http.StatusCreated, `{"sid":"SM1","status":"accepted"}`, &captured)

	cfg := testConfig(server.URL)
	cfg.MessagingServiceSID = "MG999"
	client := NewClient(cfg, commonhttp.NewClient(5*time.Second), logger.NewTestLogger(t))

	_, err := client.Send(context.Background(), "+819012345678", "hello")
	require.NoError(t, err)

	assert.Equal(t, "MG999", captured.Form.Get("MessagingServiceSid"))
	assert.Empty(t, captured.Form.Get("From"))
}

func TestSend_ProviderErrorMessageSurfaced(t *testing.T) {
	var captured capturedSend
	server := newSendServer(t, http.StatusBadRequest, `{"code":21211,"message":"Invalid 'To' Phone Number"}`, &captured)

	client := NewClient(testConfig(server.URL), commonhttp.NewClient(5*time.Second), logger.NewTestLogger(t))
	_, err := client.Send(context.Background(), "not-a-number", "hello")
	require.Error(t, err)

	stdErr := commonerrors.Normalize(err)
	assert.Equal(t, commonerrors.ErrCodeSMSSendFailed, stdErr.Code)
	assert.Equal(t, "Invalid 'To' Phone Number", stdErr.Message)
}

func TestSend_ProviderErrorWithoutBody(t *testing.T) {
	var captured capturedSend
	server := newSendServer(t, http.StatusInternalServerError, ``, &captured)

	client := NewClient(testConfig(server.URL), commonhttp.NewClient(5*time.Second), logger.NewTestLogger(t))
	_, err := client.Send(context.Background(), "+819012345678", "hello")
	require.Error(t, err)
	assert.Equal(t, "SMS send failed", commonerrors.Normalize(err).Message)
}
