// Package sheets is the client for the spreadsheet-backed remote store: a
// Google Apps Script web app that owns every durable entity (applicants,
// interviewers, messages, decisions) and fronts the calendar free/busy and
// event-creation operations on the same base URL.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	commonerrors "intake-relay/internal/common/errors"
	commonhttp "intake-relay/internal/common/http"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/models"
)

// RecordType is the sheet discriminator carried in every write envelope.
type RecordType string

const (
	TypeApplicants   RecordType = "Applicants"
	TypeInterviewers RecordType = "Interviewers"
	TypeMessages     RecordType = "Messages"
	TypeDecisions    RecordType = "Decisions"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *commonhttp.Client
	logger     logger.Logger
}

func NewClient(baseURL, token string, httpClient *commonhttp.Client, log logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		logger:     log.WithFields(map[string]interface{}{"component": "sheets"}),
	}
}

// Call performs one request against the web app. pathSuffix is appended to
// the base URL verbatim (the script multiplexes on a ?path= query). For GET,
// payload entries become query parameters; for POST, payload is the JSON
// body. Any transport failure, or a response whose own ok flag is not true,
// becomes a REMOTE_CALL_FAILED error carrying the remote's error string.
func (c *Client) Call(ctx context.Context, pathSuffix, method string, payload map[string]interface{}) (map[string]interface{}, error) {
	rawURL := c.baseURL + pathSuffix

	var body *bytes.Buffer
	if method == http.MethodPost {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, commonerrors.NewRemoteCallError(fmt.Sprintf("marshal payload: %v", err))
		}
		body = bytes.NewBuffer(jsonData)
	} else {
		if len(payload) > 0 {
			params := url.Values{}
			for key, value := range payload {
				params.Set(key, fmt.Sprint(value))
			}
			sep := "?"
			if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
				sep = "&"
			}
			rawURL = rawURL + sep + params.Encode()
		}
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, commonerrors.NewRemoteCallError(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, commonerrors.NewRemoteCallError(err.Error())
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, commonerrors.NewRemoteCallError(fmt.Sprintf("decode response: %v", err))
	}

	if ok, _ := result["ok"].(bool); !ok {
		message, _ := result["error"].(string)
		if message == "" {
			message = "GAS API call failed"
		}
		return nil, commonerrors.NewRemoteCallError(message)
	}

	return result, nil
}

// append wraps a write in the {type, token, payload} envelope the script
// expects.
func (c *Client) append(ctx context.Context, recordType RecordType, payload map[string]interface{}) error {
	envelope := map[string]interface{}{
		"type":    string(recordType),
		"token":   c.token,
		"payload": payload,
	}
	_, err := c.Call(ctx, "", http.MethodPost, envelope)
	return err
}

// CreateApplicant registers a full applicant row.
func (c *Client) CreateApplicant(ctx context.Context, applicant models.Applicant) error {
	return c.append(ctx, TypeApplicants, toMap(applicant))
}

// UpdateApplicant writes a partial applicant payload; the script merges it
// into the row keyed by applicant_id (last write wins).
func (c *Client) UpdateApplicant(ctx context.Context, fields map[string]interface{}) error {
	return c.append(ctx, TypeApplicants, fields)
}

// AppendMessage adds one entry to the append-only message log.
func (c *Client) AppendMessage(ctx context.Context, message models.Message) error {
	return c.append(ctx, TypeMessages, toMap(message))
}

// UpsertInterviewer passes arbitrary interviewer fields through untouched.
func (c *Client) UpsertInterviewer(ctx context.Context, fields map[string]interface{}) error {
	return c.append(ctx, TypeInterviewers, fields)
}

// ListInterviewers fetches the interviewer roster.
func (c *Client) ListInterviewers(ctx context.Context) ([]models.Interviewer, error) {
	result, err := c.Call(ctx, "", http.MethodGet, map[string]interface{}{
		"type":  string(TypeInterviewers),
		"token": c.token,
	})
	if err != nil {
		return nil, err
	}

	var interviewers []models.Interviewer
	if raw, exists := result["interviewers"]; exists {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, commonerrors.NewRemoteCallError(fmt.Sprintf("decode interviewers: %v", err))
		}
		if err := json.Unmarshal(data, &interviewers); err != nil {
			return nil, commonerrors.NewRemoteCallError(fmt.Sprintf("decode interviewers: %v", err))
		}
	}
	return interviewers, nil
}

// AppendDecision adds one decision row; callers follow up with an applicant
// status sync.
func (c *Client) AppendDecision(ctx context.Context, decision models.Decision) error {
	return c.append(ctx, TypeDecisions, toMap(decision))
}

func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
