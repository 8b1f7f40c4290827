package validation

import (
	"strings"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/locale"
)

type textOptions struct {
	allowEmpty bool
}

// TextOption adjusts the localizable text check.
type TextOption func(*textOptions)

// AllowEmpty accepts empty strings, for texts that are optional.
func AllowEmpty() TextOption {
	return func(o *textOptions) { o.allowEmpty = true }
}

// ValidateLocalizableText checks that text fits the bot language settings.
// Without a language config the text must be a non-empty plain string.
// With one, it must be a language map with a non-empty entry for every
// supported language; a plain string counts as missing all of them.
// name labels the text in messages.
func ValidateLocalizableText(text domain.LocalizableText, name string, lang *domain.LanguageConfig, loc locale.Localizer, opts ...TextOption) Result {
	var o textOptions
	for _, opt := range opts {
		opt(&o)
	}
	loc = locale.OrEnglish(loc)

	if lang == nil {
		if text.IsLocalized() {
			return Failed(loc.Localize(locale.TextLocalizedWithoutLanguageSelection, map[string]any{
				"Name":      name,
				"Languages": strings.Join(text.Languages(), ", "),
			}))
		}
		if text.Plain == "" && !o.allowEmpty {
			return Failed(loc.Localize(locale.TextEmpty, map[string]any{"Name": name}))
		}
		return Result{}
	}

	if !text.IsLocalized() {
		if text.Plain == "" && o.allowEmpty {
			return Result{}
		}
		return missingLanguages(loc, name, lang.SupportedLanguageCodes)
	}
	var missing []string
	for _, code := range lang.SupportedLanguageCodes {
		value, ok := text.Localized[code]
		if !ok || (value == "" && !o.allowEmpty) {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return missingLanguages(loc, name, missing)
	}
	return Result{}
}

func missingLanguages(loc locale.Localizer, name string, codes []string) Result {
	return Failed(loc.Localize(locale.TextMissingLanguages, map[string]any{
		"Name":      name,
		"Languages": strings.Join(codes, ", "),
	}))
}
