// internal/dispatch/intent.go
package dispatch

import "strings"

// Intent is the classified meaning of an inbound SMS reply.
type Intent string

const (
	IntentAccept     Intent = "accept"
	IntentReschedule Intent = "reschedule"
	IntentOptStop    Intent = "opt_stop"
	IntentOptUnstop  Intent = "opt_unstop"
	IntentHelp       Intent = "help"
	IntentUnknown    Intent = "unknown"
)

// acceptReplies are the keywords treated as slot acceptance.
var acceptReplies = map[string]struct{}{
	"1":    {},
	"ok":   {},
	"はい":   {},
	"はい。": {},
}

// ClassifyIntent maps a reply body to its intent. Comparison is done on the
// trimmed, lowercased body; callers log the original text separately.
func ClassifyIntent(body string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(body))

	if _, ok := acceptReplies[normalized]; ok {
		return IntentAccept
	}

	switch normalized {
	case "2":
		return IntentReschedule
	case "stop":
		return IntentOptStop
	case "unstop":
		return IntentOptUnstop
	case "help":
		return IntentHelp
	}

	return IntentUnknown
}
