package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
)

// LocalizableText is either a single-language string or a mapping from
// language code to string.
type LocalizableText struct {
	Plain     string
	Localized map[string]string
}

// Text returns a single-language text.
func Text(s string) LocalizableText {
	return LocalizableText{Plain: s}
}

// Localized returns a multi-language text. A nil map is treated as empty.
func Localized(m map[string]string) LocalizableText {
	if m == nil {
		m = map[string]string{}
	}
	return LocalizableText{Localized: m}
}

// IsLocalized reports whether the text is a language map.
func (t LocalizableText) IsLocalized() bool {
	return t.Localized != nil
}

// Languages returns the language codes present in a localized text, sorted.
func (t LocalizableText) Languages() []string {
	codes := make([]string, 0, len(t.Localized))
	for code := range t.Localized {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Copy returns a text that does not share its map with t.
func (t LocalizableText) Copy() LocalizableText {
	if t.Localized == nil {
		return t
	}
	return LocalizableText{Localized: maps.Clone(t.Localized)}
}

func (t LocalizableText) String() string {
	if !t.IsLocalized() {
		return t.Plain
	}
	return fmt.Sprint(t.Localized)
}

func (t LocalizableText) MarshalJSON() ([]byte, error) {
	if t.IsLocalized() {
		return json.Marshal(t.Localized)
	}
	return json.Marshal(t.Plain)
}

func (t *LocalizableText) UnmarshalJSON(data []byte) error {
	*t = LocalizableText{}
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Plain = s
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("localizable text must be a string or a language map: %w", err)
	}
	t.Localized = m
	return nil
}

// LanguageConfig describes the languages a bot supports. A nil
// *LanguageConfig means the bot has no language selection.
type LanguageConfig struct {
	SupportedLanguageCodes []string `json:"supported_language_codes"`
	DefaultLanguageCode    string   `json:"default_language_code"`
}
