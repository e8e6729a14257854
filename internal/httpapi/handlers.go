// internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	commonerrors "intake-relay/internal/common/errors"
	"intake-relay/internal/common/validation"
	"intake-relay/internal/dispatch"
	"intake-relay/internal/models"
	"intake-relay/internal/sheets"
	"intake-relay/internal/template"
	"intake-relay/internal/twilio"
)

// seedInterviewer is the fallback roster row served when the remote store
// has no interviewers (or cannot be reached): the staff UI needs at least
// one row to render.
var seedInterviewer = models.Interviewer{
	InterviewerID: "interviewer_001",
	Name:          "田中面接官",
	Email:         "tanaka@alsok.jp",
	CalendarID:    "tanaka@gmail.com",
}

// handleApplications registers a new applicant: validate, write the row,
// append the system audit entry, return the fresh id.
func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeJSON(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := validation.Validate(doc, validation.RequiredObject("phone", "consent_flg"))
	if err != nil {
		respondError(w, commonerrors.NewInternalError(err))
		return
	}
	phone, _ := doc["phone"].(string)
	if !result.Valid || phone == "" || !truthy(doc["consent_flg"]) {
		respondError(w, commonerrors.NewMissingFieldsError("phone", "consent_flg"))
		return
	}
	if !strings.HasPrefix(phone, "+") || len(phone) < 10 {
		respondError(w, commonerrors.NewValidationError("Invalid phone format. Use E.164 format (+819012345678)"))
		return
	}

	name, _ := doc["name"].(string)
	source, _ := doc["source"].(string)
	if source == "" {
		source = "Web"
	}
	notes, _ := doc["notes"].(string)

	applicant := models.Applicant{
		ApplicantID: models.NewApplicantID(),
		CreatedAt:   models.NowRFC3339(),
		Name:        name,
		Phone:       phone,
		Source:      source,
		ConsentFlg:  true,
		Status:      models.StatusPending,
	}
	if notes != "" {
		applicant.Notes = notes
	}

	if err := s.sheets.CreateApplicant(r.Context(), applicant); err != nil {
		respondError(w, err)
		return
	}

	submitted, _ := json.Marshal(doc)
	if err := s.sheets.AppendMessage(r.Context(), models.Message{
		ID:          models.NewMessageID(),
		ApplicantID: applicant.ApplicantID,
		At:          models.NowRFC3339(),
		Channel:     models.ChannelNote,
		Direction:   models.DirectionSys,
		Content:     fmt.Sprintf("Application received: %s", submitted),
		Operator:    "system",
	}); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, map[string]interface{}{"applicant_id": applicant.ApplicantID})
}

// handleNextSlot returns the next open interview slot for an interviewer.
// TODO: resolve the interviewer's own calendar from the roster; until then
// every interviewer shares the configured calendar.
func (s *Server) handleNextSlot(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeJSON(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := validation.Validate(doc, validation.RequiredObject("interviewer_id"))
	if err != nil {
		respondError(w, commonerrors.NewInternalError(err))
		return
	}
	if interviewerID, _ := doc["interviewer_id"].(string); !result.Valid || interviewerID == "" {
		respondError(w, commonerrors.NewValidationError("interviewer_id is required"))
		return
	}

	slotAt, err := s.sheets.NextFreeSlot(r.Context(), sheets.DefaultFreeBusyQuery(s.cfg.Calendar.CalendarID, s.cfg.Calendar.Timezone))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, map[string]interface{}{"slotAt": slotAt})
}

// handleSMSSend sends one outbound SMS, rendering a template when the caller
// names one instead of supplying a body, and logs the send against the
// applicant (or the bare phone number when no applicant is known).
func (s *Server) handleSMSSend(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeJSON(r)
	if err != nil {
		respondError(w, err)
		return
	}

	to, _ := doc["to"].(string)
	if to == "" {
		respondError(w, commonerrors.NewValidationError("to is required"))
		return
	}

	body, _ := doc["body"].(string)
	if templateID, _ := doc["templateId"].(string); templateID != "" && body == "" {
		body = template.Render(s.templates, templateID, stringVars(doc["variables"]))
	}
	if body == "" {
		respondError(w, commonerrors.NewValidationError("body or templateId is required"))
		return
	}

	sent, err := s.sms.Send(r.Context(), to, body)
	if err != nil {
		respondError(w, err)
		return
	}

	applicantID, _ := doc["applicant_id"].(string)
	if applicantID == "" {
		applicantID = "phone:" + to
	}
	if err := s.sheets.AppendMessage(r.Context(), models.Message{
		ID:          models.NewMessageID(),
		ApplicantID: applicantID,
		At:          models.NowRFC3339(),
		Channel:     models.ChannelSMS,
		Direction:   models.DirectionOut,
		Content:     body,
		Operator:    "system",
	}); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, map[string]interface{}{"sid": sent.Sid, "status": sent.Status})
}

// handleTwilioInbound verifies the webhook signature, then acknowledges
// immediately and hands the reply to the background dispatcher. Downstream
// failures never reach this response, so the provider does not retry.
func (s *Server) handleTwilioInbound(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, commonerrors.NewValidationError("unreadable request body"))
		return
	}

	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		respondError(w, commonerrors.NewSignatureError("Missing Twilio signature"))
		return
	}
	if !twilio.Verify(s.cfg.Twilio.AuthToken, requestURL(r), rawBody, signature) {
		respondError(w, commonerrors.NewSignatureError("Invalid Twilio signature"))
		return
	}

	form, err := url.ParseQuery(string(rawBody))
	if err != nil {
		respondError(w, commonerrors.NewValidationError("Missing required fields"))
		return
	}
	from := form.Get("From")
	messageBody := strings.TrimSpace(form.Get("Body"))
	if from == "" || messageBody == "" {
		respondError(w, commonerrors.NewValidationError("Missing required fields"))
		return
	}

	s.dispatcher.Enqueue(dispatch.Job{
		Phone:  from,
		Body:   messageBody,
		Intent: dispatch.ClassifyIntent(messageBody),
	})

	w.WriteHeader(http.StatusOK)
}

// handleListInterviewers proxies the roster, falling back to the fixed seed
// row when the store answers empty or not at all.
func (s *Server) handleListInterviewers(w http.ResponseWriter, r *http.Request) {
	interviewers, err := s.sheets.ListInterviewers(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("interviewer roster fetch failed, serving seed row", nil)
		interviewers = nil
	}
	if len(interviewers) == 0 {
		interviewers = []models.Interviewer{seedInterviewer}
	}
	respondOK(w, map[string]interface{}{"interviewers": interviewers})
}

// handleUpsertInterviewer passes arbitrary interviewer fields through to the
// store untouched.
func (s *Server) handleUpsertInterviewer(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeJSON(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.sheets.UpsertInterviewer(r.Context(), doc); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{"updated": true})
}

// handleDecisions appends a decision row and syncs the applicant's status.
// Decision values outside pass/hold/fail pass through as the new status.
func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeJSON(r)
	if err != nil {
		respondError(w, err)
		return
	}

	applicantID, _ := doc["applicant_id"].(string)
	decisionValue, _ := doc["decision"].(string)
	decidedBy, _ := doc["decided_by"].(string)
	if applicantID == "" || decisionValue == "" || decidedBy == "" {
		respondError(w, commonerrors.NewValidationError("applicant_id, decision, decided_by are required"))
		return
	}
	memo, _ := doc["memo"].(string)

	if err := s.sheets.AppendDecision(r.Context(), models.Decision{
		ApplicantID: applicantID,
		DecidedAt:   models.NowRFC3339(),
		Decision:    decisionValue,
		DecidedBy:   decidedBy,
		Memo:        memo,
	}); err != nil {
		respondError(w, err)
		return
	}

	if err := s.sheets.UpdateApplicant(r.Context(), map[string]interface{}{
		"applicant_id": applicantID,
		"status":       decisionValue,
	}); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, map[string]interface{}{"updated": true})
}

// requestURL rebuilds the absolute URL Twilio signed. Behind a proxy the
// original scheme arrives in X-Forwarded-Proto.
func requestURL(r *http.Request) string {
	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// stringVars flattens a decoded variables object into the renderer's map.
func stringVars(raw interface{}) map[string]string {
	vars, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(vars))
	for key, value := range vars {
		out[key] = fmt.Sprint(value)
	}
	return out
}
