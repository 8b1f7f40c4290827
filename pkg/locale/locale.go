// Package locale holds the translated user-facing messages of the editor and
// resolves them for a requested language.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// DefaultLanguage is used when no requested language has a translation.
var DefaultLanguage = language.English

// Localizer resolves a message ID with template data into display text.
type Localizer interface {
	Localize(id string, data map[string]any) string
}

// Catalog is a set of message translations.
type Catalog struct {
	bundle *i18n.Bundle
}

// NewCatalog loads every *.yaml message file of fsys. File names follow the
// go-i18n convention: "<anything>.<language>.yaml".
func NewCatalog(fsys fs.FS) (*Catalog, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, err := bundle.LoadMessageFileFS(fsys, path); err != nil {
			return nil, fmt.Errorf("failed to load message file %s: %w", path, err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(catalogFS, "catalog")
		if err == nil {
			defaultCatalog, err = NewCatalog(sub)
		}
		if err != nil {
			panic(fmt.Sprintf("locale: embedded catalog is broken: %v", err))
		}
	})
	return defaultCatalog
}

// Languages lists the languages the catalog has translations for.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

// Localizer returns a localizer preferring langs in order. Values may be
// language tags or Accept-Language header values.
func (c *Catalog) Localizer(langs ...string) Localizer {
	return bundleLocalizer{l: i18n.NewLocalizer(c.bundle, langs...)}
}

// For returns a localizer of the default catalog for lang.
func For(lang string) Localizer {
	return Default().Localizer(lang)
}

// English returns the default catalog localizer for English.
func English() Localizer {
	return For(DefaultLanguage.String())
}

// OrEnglish returns l, or the English localizer if l is nil.
func OrEnglish(l Localizer) Localizer {
	if l == nil {
		return English()
	}
	return l
}

type bundleLocalizer struct {
	l *i18n.Localizer
}

func (b bundleLocalizer) Localize(id string, data map[string]any) string {
	msg, err := b.l.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if msg != "" {
		// err may report a fallback to the default language; the text is still usable.
		return msg
	}
	if err != nil {
		return id
	}
	return msg
}
