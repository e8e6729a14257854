// Package template renders the fixed SMS message templates.
package template

import "strings"

// Placeholder keys the fixed templates use.
const (
	KeyName        = "NAME"
	KeyApplicantID = "APPLICANT_ID"
	KeyDateJP      = "DATE_JP"
	KeyStart       = "START"
	KeyEnd         = "END"
)

// NotFoundText is returned verbatim for an unknown template id; the caller
// sends it instead of failing, matching the intake flow's fallback behavior.
const NotFoundText = "テンプレートが見つかりません"

// Store resolves a template id to its body. The default is the static table
// below; a remote-backed table can be injected without touching callers.
type Store interface {
	Lookup(id string) (string, bool)
}

// StaticStore is an in-memory template table.
type StaticStore map[string]string

func (s StaticStore) Lookup(id string) (string, bool) {
	tpl, ok := s[id]
	return tpl, ok
}

// DefaultStore returns the three fixed recruiting templates.
func DefaultStore() Store {
	return StaticStore{
		"app_received":  "{NAME}様、ALSOK採用チームです。応募を受け付けました。受付番号：{APPLICANT_ID}。追ってご連絡いたします。",
		"2nd_schedule":  "【二次面接のご案内】{NAME}様、{DATE_JP} {START}–{END} で予定いたします。よろしければ「1」と返信、変更は「2」と返信ください。",
		"2nd_confirmed": "{NAME}様、{DATE_JP} {START}–{END} で二次面接が確定しました。場所：ALSOK本社 3F会議室",
	}
}

// Render substitutes every {KEY} occurrence with its value. Unknown ids yield
// NotFoundText; unsupplied placeholders stay verbatim. Values containing
// brace syntax are not escaped.
func Render(store Store, id string, vars map[string]string) string {
	body, ok := store.Lookup(id)
	if !ok {
		return NotFoundText
	}
	for key, value := range vars {
		body = strings.ReplaceAll(body, "{"+key+"}", value)
	}
	return body
}
