package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_SubstitutesSuppliedPlaceholders(t *testing.T) {
	out := Render(DefaultStore(), "app_received", map[string]string{
		KeyName:        "Taro",
		KeyApplicantID: "X1",
	})

	assert.Contains(t, out, "Taro")
	assert.Contains(t, out, "X1")
	assert.NotContains(t, out, "{NAME}")
	assert.NotContains(t, out, "{APPLICANT_ID}")
}

func TestRender_UnsuppliedPlaceholderStaysVerbatim(t *testing.T) {
	out := Render(DefaultStore(), "2nd_schedule", map[string]string{
		KeyName: "Taro",
	})

	assert.Contains(t, out, "Taro")
	assert.Contains(t, out, "{DATE_JP}")
	assert.Contains(t, out, "{START}")
	assert.Contains(t, out, "{END}")
}

func TestRender_UnknownTemplateYieldsLiteral(t *testing.T) {
	out := Render(DefaultStore(), "no_such_template", map[string]string{KeyName: "Taro"})
	assert.Equal(t, NotFoundText, out)
}

func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	store := StaticStore{"twice": "{NAME} and {NAME}"}
	out := Render(store, "twice", map[string]string{KeyName: "Taro"})
	assert.Equal(t, "Taro and Taro", out)
}

func TestRender_NoEscapingOfBraceSyntax(t *testing.T) {
	store := StaticStore{"t": "{A} {B}"}
	out := Render(store, "t", map[string]string{"A": "{B}", "B": "x"})
	// Substitution is sequential map iteration; a value containing brace
	// syntax may itself be substituted. Documented as not idempotent-safe.
	assert.False(t, strings.Contains(out, "{A}"))
}

func TestDefaultStore_HasThreeTemplates(t *testing.T) {
	store := DefaultStore()
	for _, id := range []string{"app_received", "2nd_schedule", "2nd_confirmed"} {
		_, ok := store.Lookup(id)
		assert.True(t, ok, id)
	}
}
