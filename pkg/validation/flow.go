package validation

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/locale"
)

// NodeResult is the validation result of one node of a flow.
type NodeResult struct {
	ID     string             `json:"id"`
	Kind   domain.NodeKind    `json:"kind"`
	Type   domain.NodeTypeKey `json:"type"`
	Result Result             `json:"result"`
}

// Report is the validation outcome of a whole flow.
type Report struct {
	// Nodes holds one entry per recognized node: entrypoints, then blocks.
	Nodes []NodeResult `json:"nodes"`
	// Errors are problems of the flow as a whole.
	Errors []string `json:"errors,omitempty"`
	// Internal lists structural problems; each wraps domain.ErrUnknownVariant.
	Internal []*InternalError `json:"-"`
}

// OK reports whether the flow can be saved.
func (r Report) OK() bool {
	if len(r.Errors) > 0 || len(r.Internal) > 0 {
		return false
	}
	for _, n := range r.Nodes {
		if !n.Result.OK() {
			return false
		}
	}
	return true
}

// Failed returns the results of the nodes that did not pass.
func (r Report) Failed() []NodeResult {
	var out []NodeResult
	for _, n := range r.Nodes {
		if !n.Result.OK() {
			out = append(out, n)
		}
	}
	return out
}

// Err returns nil if the report is OK, otherwise an *AggregateError holding
// internal errors first, then flow errors, then node errors.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	var errs []error
	for _, e := range r.Internal {
		errs = append(errs, e)
	}
	for _, msg := range r.Errors {
		errs = append(errs, &ValidationError{Message: msg})
	}
	for _, n := range r.Nodes {
		if err := n.Result.Err(n.ID); err != nil {
			errs = append(errs, ValidationErrors(err)...)
		}
	}
	return &AggregateError{Errors: errs}
}

// ValidateFlow validates every node of the flow and the cross-node rules:
// unique node IDs, unique form names and at most one language select block.
// Nodes and form members of unknown type are reported in Report.Internal.
func ValidateFlow(flow *domain.UserFlowConfig, lang *domain.LanguageConfig, loc locale.Localizer) Report {
	c := newChecker(lang, loc)
	var report Report

	for i, ep := range flow.Entrypoints {
		if ep.Variant == nil {
			report.Internal = append(report.Internal, c.unknown(domain.KindEntrypoint, i))
			continue
		}
		report.Nodes = append(report.Nodes, NodeResult{
			ID:     ep.Variant.NodeID(),
			Kind:   domain.KindEntrypoint,
			Type:   ep.Variant.TypeKey(),
			Result: ValidateEntrypoint(ep.Variant, c.lang, c.loc),
		})
	}

	forms := make(map[string][]string)
	var formOrder []string
	languageSelects := 0
	for i, b := range flow.Blocks {
		if b.Variant == nil {
			report.Internal = append(report.Internal, c.unknown(domain.KindBlock, i))
			continue
		}
		report.Nodes = append(report.Nodes, NodeResult{
			ID:     b.Variant.NodeID(),
			Kind:   domain.KindBlock,
			Type:   b.Variant.TypeKey(),
			Result: ValidateBlock(b.Variant, c.lang, c.loc),
		})
		if f := b.Form(); f != nil {
			report.Internal = append(report.Internal, c.unknownMembers(f.ID, f.Members, "")...)
			if _, seen := forms[f.FormName]; !seen {
				formOrder = append(formOrder, f.FormName)
			}
			forms[f.FormName] = append(forms[f.FormName], f.ID)
		}
		if b.LanguageSelect() != nil {
			languageSelects++
		}
	}

	counts := make(map[string]int)
	var dupOrder []string
	for _, id := range flow.NodeIDs() {
		counts[id]++
		if counts[id] == 2 {
			dupOrder = append(dupOrder, id)
		}
	}
	for _, id := range dupOrder {
		report.Errors = append(report.Errors, c.msg(locale.FlowDuplicateNodeID, map[string]any{"ID": id}))
	}
	for _, name := range formOrder {
		if ids := forms[name]; len(ids) > 1 {
			report.Errors = append(report.Errors, c.msg(locale.FlowDuplicateFormName, map[string]any{
				"Name":   name,
				"Blocks": strings.Join(ids, ", "),
			}))
		}
	}
	if languageSelects > 1 {
		report.Errors = append(report.Errors, c.msg(locale.FlowMultipleLanguageSelect, map[string]any{"Count": languageSelects}))
	}
	return report
}

func (c checker) unknown(kind domain.NodeKind, index int) *InternalError {
	return &InternalError{
		Message: c.msg(locale.FlowUnknownVariant, map[string]any{"Kind": kind, "Index": index + 1}),
		Err:     fmt.Errorf("%s #%d: %w", kind, index+1, domain.ErrUnknownVariant),
	}
}

// unknownMembers reports form members, at any depth, whose type is not known.
func (c checker) unknownMembers(block string, members []domain.FormMemberConfig, prefix string) []*InternalError {
	var out []*InternalError
	for i, m := range members {
		path := fmt.Sprintf("%s%d", prefix, i+1)
		if b := m.Branch(); b != nil {
			out = append(out, c.unknownMembers(block, b.Members, path+".")...)
			continue
		}
		if m.Field() == nil {
			out = append(out, &InternalError{
				Message: c.msg(locale.FlowUnknownFormMember, map[string]any{"Block": block, "Path": path}),
				Err:     fmt.Errorf("form %s member #%s: %w", block, path, domain.ErrUnknownVariant),
			})
		}
	}
	return out
}
