// internal/sheets/calendar.go
package sheets

import (
	"context"
	"net/http"
)

// FreeBusyQuery asks the calendar side of the web app for the next open
// interview slot.
type FreeBusyQuery struct {
	CalendarID  string `json:"calendarId"`
	HorizonDays int    `json:"horizonDays"`
	StartHour   int    `json:"startHour"`
	EndHour     int    `json:"endHour"`
	TZ          string `json:"tz"`
}

// DefaultFreeBusyQuery is the query both the public next-slot endpoint and
// the reschedule reply use: a 14-day horizon of 9:00-18:00 working hours.
func DefaultFreeBusyQuery(calendarID, tz string) FreeBusyQuery {
	if calendarID == "" {
		calendarID = "primary"
	}
	if tz == "" {
		tz = "Asia/Tokyo"
	}
	return FreeBusyQuery{
		CalendarID:  calendarID,
		HorizonDays: 14,
		StartHour:   9,
		EndHour:     18,
		TZ:          tz,
	}
}

// Event is a calendar event-creation request; MailTo additionally notifies
// the interviewer by e-mail on the script side.
type Event struct {
	CalendarID  string   `json:"calendarId"`
	SlotAt      string   `json:"slotAt"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Attendees   []string `json:"attendees"`
	MailTo      string   `json:"mailTo"`
}

// NextFreeSlot returns the next open slot as an RFC3339 string, or "" when
// the calendar has none inside the horizon.
func (c *Client) NextFreeSlot(ctx context.Context, query FreeBusyQuery) (string, error) {
	result, err := c.Call(ctx, "?path=/freebusy/next", http.MethodPost, toMap(query))
	if err != nil {
		return "", err
	}
	slotAt, _ := result["slotAt"].(string)
	return slotAt, nil
}

// CreateEvent books the slot and returns the created event id.
func (c *Client) CreateEvent(ctx context.Context, event Event) (string, error) {
	result, err := c.Call(ctx, "?path=/calendar/create-event", http.MethodPost, toMap(event))
	if err != nil {
		return "", err
	}
	eventID, _ := result["eventId"].(string)
	return eventID, nil
}
