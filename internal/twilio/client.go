// Package twilio sends SMS through the provider's REST API and verifies
// inbound webhook signatures.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	commonerrors "intake-relay/internal/common/errors"
	commonhttp "intake-relay/internal/common/http"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/common/metrics"
)

const DefaultAPIBase = "https://api.twilio.com"

// Config carries the provider credentials and sender identity.
type Config struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	FromNumber          string
	APIBase             string
}

type Client struct {
	cfg        Config
	httpClient *commonhttp.Client
	logger     logger.Logger
}

// SendResult is the delivery identifier and initial status the provider
// returns for an accepted message.
type SendResult struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

func NewClient(cfg Config, httpClient *commonhttp.Client, log logger.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log.WithFields(map[string]interface{}{"component": "twilio"}),
	}
}

// Send posts one outbound SMS. The messaging-service pool takes precedence
// over the explicit sender number when both are configured.
func (c *Client) Send(ctx context.Context, to, body string) (*SendResult, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	if c.cfg.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", c.cfg.MessagingServiceSID)
	} else {
		form.Set("From", c.cfg.FromNumber)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.APIBase, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, commonerrors.NewSMSSendError("SMS send failed", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SMSMessagesSent.WithLabelValues("transport_error").Inc()
		return nil, commonerrors.NewSMSSendError("SMS send failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, commonerrors.NewSMSSendError("SMS send failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SMSMessagesSent.WithLabelValues("rejected").Inc()
		message := providerMessage(respBody)
		c.logger.Error("provider rejected message", map[string]interface{}{
			"status": resp.StatusCode,
			"to":     to,
			"error":  message,
		})
		return nil, commonerrors.NewSMSSendError(message, nil)
	}

	var result SendResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, commonerrors.NewSMSSendError("SMS send failed", err)
	}

	metrics.SMSMessagesSent.WithLabelValues(result.Status).Inc()
	c.logger.Info("message sent", map[string]interface{}{
		"sid":    result.Sid,
		"status": result.Status,
	})
	return &result, nil
}

// providerMessage extracts the error message from the provider's JSON error
// body when present.
func providerMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return "SMS send failed"
}
