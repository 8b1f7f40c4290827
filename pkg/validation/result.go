package validation

import (
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/locale"
)

// Result is the outcome of validating one node. The zero Result is a
// success; a failure carries one or more messages in report order.
type Result struct {
	Errors []string `json:"errors,omitempty"`
}

// Failed returns a failed result with the given messages.
func Failed(msgs ...string) Result {
	return Result{Errors: msgs}
}

// OK reports whether the result has no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Merge concatenates the errors of all results, in order.
func Merge(results ...Result) Result {
	var out Result
	for _, r := range results {
		out.Errors = append(out.Errors, r.Errors...)
	}
	return out
}

// Err returns nil for a successful result, otherwise an *AggregateError
// with one *ValidationError per message attributed to node.
func (r Result) Err(node string) error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, msg := range r.Errors {
		errs[i] = &ValidationError{Node: node, Message: msg}
	}
	return &AggregateError{Errors: errs}
}

// checker carries the per-call inputs shared by every rule.
type checker struct {
	lang *domain.LanguageConfig
	loc  locale.Localizer
}

func newChecker(lang *domain.LanguageConfig, loc locale.Localizer) checker {
	return checker{lang: lang, loc: locale.OrEnglish(loc)}
}

func (c checker) msg(id string, data map[string]any) string {
	return c.loc.Localize(id, data)
}

func (c checker) fail(id string, data map[string]any) Result {
	return Failed(c.msg(id, data))
}

func (c checker) text(text domain.LocalizableText, name string, opts ...TextOption) Result {
	return ValidateLocalizableText(text, name, c.lang, c.loc, opts...)
}
