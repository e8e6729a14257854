package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	commonhttp "intake-relay/internal/common/http"
	"intake-relay/internal/common/logger"
	"intake-relay/internal/sheets"
	"intake-relay/internal/twilio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gasCall is one request the fake web app received.
type gasCall struct {
	Path string // "" for plain record writes, otherwise the ?path= value
	Body map[string]interface{}
}

// fakeGAS records every call and answers the calendar paths with canned data.
type fakeGAS struct {
	mu     sync.Mutex
	calls  []gasCall
	slotAt string
}

func (f *fakeGAS) handler(w http.ResponseWriter, r *http.Request) {
	call := gasCall{Path: r.URL.Query().Get("path")}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&call.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	response := map[string]interface{}{"ok": true}
	switch call.Path {
	case "/freebusy/next":
		response["slotAt"] = f.slotAt
	case "/calendar/create-event":
		response["eventId"] = "evt_123"
	}
	_ = json.NewEncoder(w).Encode(response)
}

func (f *fakeGAS) recorded() []gasCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gasCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakeSMS records sends instead of hitting Twilio.
type fakeSMS struct {
	mu    sync.Mutex
	sends []struct{ To, Body string }
	err   error
}

func (f *fakeSMS) Send(_ context.Context, to, body string) (*twilio.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sends = append(f.sends, struct{ To, Body string }{to, body})
	return &twilio.SendResult{Sid: "SM_test", Status: "queued"}, nil
}

func (f *fakeSMS) recorded() []struct{ To, Body string } {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]struct{ To, Body string }, len(f.sends))
	copy(out, f.sends)
	return out
}

func newTestDispatcher(t *testing.T, gas *fakeGAS, sms *fakeSMS) *Dispatcher {
	server := httptest.NewServer(http.HandlerFunc(gas.handler))
	t.Cleanup(server.Close)

	sheetsClient := sheets.NewClient(server.URL, "gas-token", commonhttp.NewClient(5*time.Second), logger.NewTestLogger(t))
	return New(Config{
		CalendarID:       "tanaka@gmail.com",
		Timezone:         "Asia/Tokyo",
		InterviewerEmail: "tanaka@alsok.jp",
		Workers:          1,
		QueueSize:        4,
	}, sheetsClient, sms, nil, nil, logger.NewTestLogger(t))
}

func messagePayload(t *testing.T, call gasCall) map[string]interface{} {
	t.Helper()
	require.Equal(t, "Messages", call.Body["type"])
	payload, ok := call.Body["payload"].(map[string]interface{})
	require.True(t, ok)
	return payload
}

func TestProcess_AcceptBooksEventAndConfirms(t *testing.T) {
	gas := &fakeGAS{}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)

	d.process(context.Background(), Job{Phone: "+819012345678", Body: "1", Intent: IntentAccept})

	calls := gas.recorded()
	require.Len(t, calls, 4)

	// Inbound reply is logged first, before any action.
	inbound := messagePayload(t, calls[0])
	assert.Equal(t, "in", inbound["direction"])
	assert.Equal(t, "1", inbound["content"])
	assert.Equal(t, "phone:+819012345678", inbound["applicant_id"])

	assert.Equal(t, "/calendar/create-event", calls[1].Path)
	assert.Equal(t, "ALSOK二次面接", calls[1].Body["title"])
	assert.Equal(t, "tanaka@gmail.com", calls[1].Body["calendarId"])
	assert.Equal(t, "tanaka@alsok.jp", calls[1].Body["mailTo"])

	sends := sms.recorded()
	require.Len(t, sends, 1)
	assert.Equal(t, "+819012345678", sends[0].To)
	assert.Contains(t, sends[0].Body, "面接が確定しました")
	assert.Contains(t, sends[0].Body, "イベントID: evt_123")

	outbound := messagePayload(t, calls[2])
	assert.Equal(t, "out", outbound["direction"])

	require.Equal(t, "Applicants", calls[3].Body["type"])
	update := calls[3].Body["payload"].(map[string]interface{})
	assert.Equal(t, "2nd_booked", update["status"])
	assert.NotEmpty(t, update["next_action_at"])
}

func TestProcess_RescheduleOffersNextSlot(t *testing.T) {
	gas := &fakeGAS{slotAt: "2026-09-02T10:00:00+09:00"}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)

	d.process(context.Background(), Job{Phone: "+819012345678", Body: "2", Intent: IntentReschedule})

	calls := gas.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, "/freebusy/next", calls[1].Path)

	sends := sms.recorded()
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0].Body, "2026-09-02T10:00:00+09:00")
	assert.Contains(t, sends[0].Body, "「1」と返信")
}

func TestProcess_RescheduleWithoutAvailability(t *testing.T) {
	gas := &fakeGAS{slotAt: ""}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)

	d.process(context.Background(), Job{Phone: "+819012345678", Body: "2", Intent: IntentReschedule})

	sends := sms.recorded()
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0].Body, "現在空きがございません")
}

func TestProcess_OptKeywordsAcknowledge(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   string
	}{
		{name: "stop", intent: IntentOptStop, want: "配信を停止しました"},
		{name: "unstop", intent: IntentOptUnstop, want: "配信を再開しました"},
		{name: "help", intent: IntentHelp, want: "このヘルプ=「HELP」"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gas := &fakeGAS{}
			sms := &fakeSMS{}
			d := newTestDispatcher(t, gas, sms)

			d.process(context.Background(), Job{Phone: "+819012345678", Body: strings.ToUpper(tt.name), Intent: tt.intent})

			sends := sms.recorded()
			require.Len(t, sends, 1)
			assert.Contains(t, sends[0].Body, tt.want)
			assert.True(t, strings.HasPrefix(sends[0].Body, "ALSOK採用チーム:"))
		})
	}
}

func TestProcess_UnknownReplyLogsOnly(t *testing.T) {
	gas := &fakeGAS{}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)

	d.process(context.Background(), Job{Phone: "+819012345678", Body: "明日は無理です", Intent: IntentUnknown})

	calls := gas.recorded()
	require.Len(t, calls, 1)
	inbound := messagePayload(t, calls[0])
	assert.Equal(t, "in", inbound["direction"])
	assert.Empty(t, sms.recorded())
}

func TestDispatcher_QueueLifecycle(t *testing.T) {
	gas := &fakeGAS{}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)
	d.Start()

	assert.True(t, d.Enqueue(Job{Phone: "+819012345678", Body: "HELP", Intent: IntentHelp}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	require.Len(t, sms.recorded(), 1)
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	gas := &fakeGAS{}
	sms := &fakeSMS{}
	d := newTestDispatcher(t, gas, sms)
	// No workers started: the queue of 4 fills and the fifth job drops.

	for i := 0; i < 4; i++ {
		assert.True(t, d.Enqueue(Job{Phone: "+819012345678", Intent: IntentHelp}))
	}
	assert.False(t, d.Enqueue(Job{Phone: "+819012345678", Intent: IntentHelp}))
}
