package dsl

import (
	"errors"

	"github.com/aretw0/flowstudio/pkg/domain"
)

// T returns a single-language text.
func T(s string) domain.LocalizableText { return domain.Text(s) }

// L returns a multi-language text.
func L(m map[string]string) domain.LocalizableText { return domain.Localized(m) }

// EntrypointBuilder provides a fluent API for configuring an entrypoint.
type EntrypointBuilder struct {
	ep  domain.EntryPoint
	err error
}

func (e *EntrypointBuilder) build() (domain.Node, error) { return e.ep, e.err }

// Start adds the default /start command.
func (b *Builder) Start() *EntrypointBuilder {
	return b.Command(domain.DefaultStartCommandID, "start")
}

// Command adds a /command entrypoint.
func (b *Builder) Command(id, command string) *EntrypointBuilder {
	e := &EntrypointBuilder{ep: &domain.CommandEntryPoint{ID: id, Command: command, Scope: "private"}}
	b.add(id, e)
	return e
}

// CatchAll adds an entrypoint catching every message.
func (b *Builder) CatchAll(id string) *EntrypointBuilder {
	e := &EntrypointBuilder{ep: &domain.CatchAllEntryPoint{ID: id}}
	b.add(id, e)
	return e
}

// Regex adds an entrypoint catching messages matching pattern.
func (b *Builder) Regex(id, pattern string) *EntrypointBuilder {
	e := &EntrypointBuilder{ep: &domain.RegexMatchEntryPoint{ID: id, Regex: pattern}}
	b.add(id, e)
	return e
}

// Go links the entrypoint to the target block.
func (e *EntrypointBuilder) Go(target string) *EntrypointBuilder {
	e.ep.RewriteRefs(func(*string) *string { return domain.Ref(target) })
	return e
}

// Describe sets the command description shown in the Telegram menu.
func (e *EntrypointBuilder) Describe(description string) *EntrypointBuilder {
	cmd, ok := e.ep.(*domain.CommandEntryPoint)
	if !ok {
		e.err = errors.New("only commands have a description")
		return e
	}
	cmd.ShortDescription = &description
	return e
}

// Scope restricts where the command is available: private, group or any.
func (e *EntrypointBuilder) Scope(scope string) *EntrypointBuilder {
	if cmd, ok := e.ep.(*domain.CommandEntryPoint); ok {
		cmd.Scope = scope
	}
	return e
}

// ContentBuilder configures a content block.
type ContentBuilder struct {
	block *domain.ContentBlock
}

func (c *ContentBuilder) build() (domain.Node, error) { return c.block, nil }

// Content adds a content block.
func (b *Builder) Content(id string) *ContentBuilder {
	c := &ContentBuilder{block: &domain.ContentBlock{ID: id, Contents: []domain.Content{}}}
	b.add(id, c)
	return c
}

// Text appends a markdown message.
func (c *ContentBuilder) Text(text domain.LocalizableText) *ContentBuilder {
	c.block.Contents = append(c.block.Contents, domain.Content{
		Text:        &domain.ContentText{Text: text, Markup: "markdown"},
		Attachments: []domain.Attachment{},
	})
	return c
}

// Image attaches an image to the last message, or sends it on its own.
func (c *ContentBuilder) Image(ref string) *ContentBuilder {
	if len(c.block.Contents) == 0 {
		c.block.Contents = append(c.block.Contents, domain.Content{})
	}
	last := &c.block.Contents[len(c.block.Contents)-1]
	last.Attachments = append(last.Attachments, domain.Attachment{Image: &ref})
	return c
}

// Go links the block to the target block.
func (c *ContentBuilder) Go(target string) *ContentBuilder {
	c.block.NextBlockID = domain.Ref(target)
	return c
}

// MenuBuilder configures a menu or a submenu.
type MenuBuilder struct {
	menu  *domain.Menu
	block *domain.MenuBlock
}

func (m *MenuBuilder) build() (domain.Node, error) { return m.block, nil }

// Menu adds a menu block.
func (b *Builder) Menu(id string) *MenuBuilder {
	block := &domain.MenuBlock{ID: id, Menu: domain.Menu{
		Items:  []domain.MenuItem{},
		Config: domain.MenuConfig{Mechanism: "inline_buttons"},
	}}
	m := &MenuBuilder{menu: &block.Menu, block: block}
	b.add(id, m)
	return m
}

// Text sets the menu message.
func (m *MenuBuilder) Text(text domain.LocalizableText) *MenuBuilder {
	m.menu.Text = text
	return m
}

// Item adds a button leading to the target block.
func (m *MenuBuilder) Item(label domain.LocalizableText, target string) *MenuBuilder {
	m.menu.Items = append(m.menu.Items, domain.MenuItem{Label: label, NextBlockID: domain.Ref(target)})
	return m
}

// Link adds a button opening url.
func (m *MenuBuilder) Link(label domain.LocalizableText, url string) *MenuBuilder {
	m.menu.Items = append(m.menu.Items, domain.MenuItem{Label: label, LinkURL: &url})
	return m
}

// Submenu adds a button opening a nested menu configured by fn.
func (m *MenuBuilder) Submenu(label domain.LocalizableText, fn func(sub *MenuBuilder)) *MenuBuilder {
	sub := &domain.Menu{
		Text:   label,
		Items:  []domain.MenuItem{},
		Config: m.menu.Config,
	}
	fn(&MenuBuilder{menu: sub, block: m.block})
	m.menu.Items = append(m.menu.Items, domain.MenuItem{Label: label, Submenu: sub})
	return m
}

// Back sets the label of the back button of submenus.
func (m *MenuBuilder) Back(label domain.LocalizableText) *MenuBuilder {
	m.menu.Config.BackLabel = &label
	return m
}

// Mechanism sets how the menu is shown: inline_buttons or reply_keyboard.
func (m *MenuBuilder) Mechanism(mechanism string) *MenuBuilder {
	m.menu.Config.Mechanism = mechanism
	return m
}

// HumanOperatorBuilder configures a human operator block.
type HumanOperatorBuilder struct {
	block *domain.HumanOperatorBlock
}

func (h *HumanOperatorBuilder) build() (domain.Node, error) { return h.block, nil }

// HumanOperator adds a block handing the user over to admins in chatID.
func (b *Builder) HumanOperator(id string, chatID int64) *HumanOperatorBuilder {
	h := &HumanOperatorBuilder{block: &domain.HumanOperatorBlock{
		ID: id,
		FeedbackHandlerConfig: domain.FeedbackHandlerConfig{
			AdminChatID:          chatID,
			MaxMessagesPerMinute: 15,
		},
	}}
	b.add(id, h)
	return h
}

// Messages sets the messages shown to the user.
func (h *HumanOperatorBuilder) Messages(forwarded, throttling domain.LocalizableText) *HumanOperatorBuilder {
	h.block.FeedbackHandlerConfig.MessagesToUser = domain.MessagesToUser{
		ForwardedToAdminOK: forwarded,
		Throttling:         throttling,
	}
	return h
}

// CatchAll makes the block receive every message not handled elsewhere.
func (h *HumanOperatorBuilder) CatchAll() *HumanOperatorBuilder {
	h.block.CatchAll = true
	return h
}

// LanguageSelectBuilder configures a language select block.
type LanguageSelectBuilder struct {
	block *domain.LanguageSelectBlock
}

func (l *LanguageSelectBuilder) build() (domain.Node, error) { return l.block, nil }

// LanguageSelect adds a language selection block. The first language is the
// default one.
func (b *Builder) LanguageSelect(id string, languages ...string) *LanguageSelectBuilder {
	block := &domain.LanguageSelectBlock{ID: id, SupportedLanguages: languages}
	if len(languages) > 0 {
		block.DefaultLanguage = languages[0]
	}
	l := &LanguageSelectBuilder{block: block}
	b.add(id, l)
	return l
}

// Prompt sets the language menu message.
func (l *LanguageSelectBuilder) Prompt(text domain.LocalizableText) *LanguageSelectBuilder {
	l.block.MenuConfig.Prompt = text
	return l
}

// Default overrides the default language.
func (l *LanguageSelectBuilder) Default(language string) *LanguageSelectBuilder {
	l.block.DefaultLanguage = language
	return l
}

// Go links the block to the block shown after a language is selected.
func (l *LanguageSelectBuilder) Go(target string) *LanguageSelectBuilder {
	l.block.LanguageSelectedNextBlockID = domain.Ref(target)
	return l
}
