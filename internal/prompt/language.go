package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// LanguageName returns the English display name of a BCP 47 tag, for
// example "ja" becomes "Japanese". Inputs that are not valid tags, or are
// already a language name, are returned trimmed and unchanged.
func LanguageName(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = DefaultLanguage
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	name := display.English.Tags().Name(t)
	if name == "" {
		return tag
	}
	return name
}

// NormalizeAgentName turns user input such as "finance agent" into the
// canonical "Finance Agent" form used as the role prompt key.
func NormalizeAgentName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(strings.ToLower(name))
}
