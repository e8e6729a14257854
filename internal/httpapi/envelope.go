// internal/httpapi/envelope.go
package httpapi

import (
	"encoding/json"
	"net/http"

	commonerrors "intake-relay/internal/common/errors"
)

// respondOK writes the uniform success envelope: {"ok":true} merged with the
// handler's data fields.
func respondOK(w http.ResponseWriter, data map[string]interface{}) {
	body := map[string]interface{}{"ok": true}
	for key, value := range data {
		body[key] = value
	}
	writeJSON(w, http.StatusOK, body)
}

// respondError writes the uniform failure envelope {"ok":false,"error":...}
// with the status the error code maps to.
func respondError(w http.ResponseWriter, err error) {
	stdErr := commonerrors.Normalize(err)
	writeJSON(w, stdErr.HTTPStatus(), map[string]interface{}{
		"ok":    false,
		"error": stdErr.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a request body into a generic document; handlers validate
// field presence themselves so 400 messages can enumerate what is missing.
func decodeJSON(r *http.Request) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, commonerrors.NewValidationError("invalid JSON body")
	}
	return doc, nil
}

// truthy mirrors the loose consent-flag check the public form relies on:
// false, 0, "" and null all count as absent.
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	case nil:
		return false
	default:
		return true
	}
}
