package validation

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/locale"
)

// commandPattern is what Telegram accepts as a bot command name.
var commandPattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// ValidateEntrypoint checks a single entrypoint. lang is nil for a
// single-language bot; a nil loc reports in English.
func ValidateEntrypoint(ep domain.EntryPoint, lang *domain.LanguageConfig, loc locale.Localizer) Result {
	c := newChecker(lang, loc)
	switch ep := ep.(type) {
	case *domain.CommandEntryPoint:
		if ep.Command == "" {
			return c.fail(locale.EntrypointCommandEmpty, nil)
		}
		if !commandPattern.MatchString(ep.Command) {
			return c.fail(locale.EntrypointCommandInvalid, map[string]any{"Command": ep.Command})
		}
	case *domain.RegexMatchEntryPoint:
		if _, err := regexp.Compile(ep.Regex); err != nil {
			return c.fail(locale.EntrypointRegexInvalid, map[string]any{"Error": err.Error()})
		}
	}
	return Result{}
}

// ValidateBlock checks a single block, reporting every problem at once.
// lang is nil for a single-language bot; a nil loc reports in English.
func ValidateBlock(b domain.Block, lang *domain.LanguageConfig, loc locale.Localizer) Result {
	c := newChecker(lang, loc)
	switch b := b.(type) {
	case *domain.ContentBlock:
		return c.content(b)
	case *domain.HumanOperatorBlock:
		return c.humanOperator(b)
	case *domain.MenuBlock:
		return c.menu(b)
	case *domain.LanguageSelectBlock:
		return c.languageSelect(b)
	case *domain.FormBlock:
		return c.form(b)
	}
	return Result{}
}

func (c checker) content(b *domain.ContentBlock) Result {
	var results []Result
	for i, content := range b.Contents {
		if content.Text == nil {
			continue
		}
		var opts []TextOption
		if len(content.Attachments) > 0 {
			opts = append(opts, AllowEmpty())
		}
		name := c.msg(locale.ContentTextName, map[string]any{"Index": i + 1})
		results = append(results, c.text(content.Text.Text, name, opts...))
	}
	return Merge(results...)
}

func (c checker) humanOperator(b *domain.HumanOperatorBlock) Result {
	cfg := b.FeedbackHandlerConfig
	var results []Result
	if cfg.AdminChatID == domain.PlaceholderChatID {
		results = append(results, c.fail(locale.HumanOperatorAdminChatNotSelected, nil))
	}
	results = append(results,
		c.text(cfg.MessagesToUser.ForwardedToAdminOK, c.msg(locale.HumanOperatorForwardedToAdminName, nil)),
		c.text(cfg.MessagesToUser.Throttling, c.msg(locale.HumanOperatorThrottlingName, nil)),
	)
	return Merge(results...)
}

func (c checker) menu(b *domain.MenuBlock) Result {
	return Merge(c.menuBody(b.Menu, "")...)
}

// menuBody checks a menu, or the submenu behind the button at path.
func (c checker) menuBody(m domain.Menu, path string) []Result {
	textName, backName, noItems := locale.MenuTextName, locale.MenuBackLabelName, locale.MenuNoItems
	var data map[string]any
	prefix := ""
	if path != "" {
		textName, backName, noItems = locale.SubmenuTextName, locale.SubmenuBackLabelName, locale.SubmenuNoItems
		data = map[string]any{"Path": "#" + path}
		prefix = path + "."
	}

	results := []Result{c.text(m.Text, c.msg(textName, data))}
	if m.Config.BackLabel != nil {
		results = append(results, c.text(*m.Config.BackLabel, c.msg(backName, data)))
	}
	if len(m.Items) == 0 {
		results = append(results, c.fail(noItems, data))
	}
	return append(results, c.menuItems(m.Items, prefix)...)
}

func (c checker) menuItems(items []domain.MenuItem, prefix string) []Result {
	var results []Result
	for i, item := range items {
		path := fmt.Sprintf("%s%d", prefix, i+1)
		data := map[string]any{"Path": "#" + path}
		results = append(results, c.text(item.Label, c.msg(locale.MenuItemLabelName, data)))
		switch {
		case item.Submenu != nil:
			results = append(results, c.menuBody(*item.Submenu, path)...)
		case item.NextBlockID != nil:
		case item.LinkURL != nil && *item.LinkURL != "":
		default:
			results = append(results, c.fail(locale.MenuItemNoTarget, data))
		}
	}
	return results
}

func (c checker) languageSelect(b *domain.LanguageSelectBlock) Result {
	var results []Result
	switch {
	case len(b.SupportedLanguages) == 0:
		results = append(results, c.fail(locale.LanguageSelectNoLanguages, nil))
	case b.DefaultLanguage == "":
		results = append(results, c.fail(locale.LanguageSelectNoDefault, nil))
	case !slices.Contains(b.SupportedLanguages, b.DefaultLanguage):
		results = append(results, c.fail(locale.LanguageSelectDefaultNotSupported, nil))
	}
	results = append(results, c.text(b.MenuConfig.Prompt, c.msg(locale.LanguageSelectPromptName, nil)))
	return Merge(results...)
}
