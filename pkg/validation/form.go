package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/locale"
)

func (c checker) form(b *domain.FormBlock) Result {
	var results []Result
	if len(b.Members) == 0 {
		results = append(results, c.fail(locale.FormNoMembers, nil))
	}
	results = append(results, c.members(b.Members, "")...)

	for _, m := range b.Messages.Entries() {
		results = append(results, c.text(m.Text, c.msg(locale.FormMessagePrefix+m.Key, nil)))
	}

	export := b.ResultsExport
	if !export.EchoToUser && export.ToChat == nil && !export.ToStore {
		results = append(results, c.fail(locale.FormNoResultsExport, nil))
	}
	if export.ToChat != nil && export.ToChat.ChatID.IsPlaceholder() {
		results = append(results, c.fail(locale.FormResultsChatNotSelected, nil))
	}
	return Merge(results...)
}

// members checks every member of one list and the branch runs of that list,
// then descends into branches. Paths are 1-based positions joined by dots.
func (c checker) members(members []domain.FormMemberConfig, prefix string) []Result {
	var results []Result
	for i, m := range members {
		path := fmt.Sprintf("%s%d", prefix, i+1)
		if f := m.Field(); f != nil {
			results = append(results, c.field(f, path))
		}
		if b := m.Branch(); b != nil {
			data := map[string]any{"Path": "#" + path}
			if len(b.Members) == 0 {
				results = append(results, c.fail(locale.FormBranchEmpty, data))
			}
			if b.ConditionMatchValue == nil {
				results = append(results, c.fail(locale.FormBranchNoCondition, data))
			}
			results = append(results, c.members(b.Members, path+".")...)
		}
	}
	return append(results, c.branchRuns(members, prefix)...)
}

func (c checker) field(f domain.FormField, path string) Result {
	base := f.Base()
	data := map[string]any{"Path": "#" + path}

	var results []Result
	prompt := c.text(base.Prompt, c.msg(locale.FormFieldPromptName, data))
	results = append(results, prompt)
	if prompt.OK() && base.Name == "" {
		results = append(results, c.fail(locale.FormFieldNameEmpty, data))
	}

	if ss, ok := f.(*domain.SingleSelectField); ok {
		if len(ss.Options) == 0 {
			results = append(results, c.fail(locale.FormFieldNoOptions, data))
		}
		for i, opt := range ss.Options {
			name := c.msg(locale.FormOptionLabelName, map[string]any{"Path": "#" + path, "Index": i + 1})
			results = append(results, c.text(opt.Label, name))
		}
	}
	return Merge(results...)
}

// switchState is the fold state over a member list. A nil field means no
// switch: the previous member is not a single select field.
type switchState struct {
	field *domain.SingleSelectField
	path  string
}

type branchAt struct {
	path   string
	branch *domain.FormBranch
}

// step advances the fold past a non-branch member.
func step(m domain.FormMemberConfig, path string) switchState {
	if ss, ok := m.Field().(*domain.SingleSelectField); ok {
		return switchState{field: ss, path: path}
	}
	return switchState{}
}

// branchRuns splits members into maximal runs of consecutive branches and
// checks each run against the switch field preceding it.
func (c checker) branchRuns(members []domain.FormMemberConfig, prefix string) []Result {
	var (
		results []Result
		state   switchState
		run     []branchAt
	)
	flush := func() {
		if len(run) > 0 {
			results = append(results, c.branchRun(state, run))
			run = nil
		}
	}
	for i, m := range members {
		path := fmt.Sprintf("%s%d", prefix, i+1)
		if b := m.Branch(); b != nil {
			run = append(run, branchAt{path: path, branch: b})
			continue
		}
		flush()
		state = step(m, path)
	}
	flush()
	return results
}

// branchRun produces at most one error for a run.
func (c checker) branchRun(state switchState, run []branchAt) Result {
	if state.field == nil {
		return c.fail(locale.FormBranchesWithoutSwitch, map[string]any{"Indices": joinPaths(run)})
	}

	options := state.field.OptionIDs()
	var unknown []branchAt
	byValue := make(map[string][]branchAt)
	var order []string
	for _, ba := range run {
		cond := ba.branch.ConditionMatchValue
		if cond == nil {
			continue
		}
		if !slices.Contains(options, *cond) {
			unknown = append(unknown, ba)
		}
		if _, seen := byValue[*cond]; !seen {
			order = append(order, *cond)
		}
		byValue[*cond] = append(byValue[*cond], ba)
	}
	var duplicated []branchAt
	for _, value := range order {
		if len(byValue[value]) > 1 {
			duplicated = append(duplicated, byValue[value]...)
		}
	}

	var parts []string
	if len(unknown) > 0 {
		parts = append(parts, c.msg(locale.FormBranchesUnknownCondition, map[string]any{
			"Indices": joinPaths(unknown),
			"Field":   "#" + state.path,
		}))
	}
	if len(duplicated) > 0 {
		parts = append(parts, c.msg(locale.FormBranchesDuplicateCondition, map[string]any{
			"Indices": joinPaths(duplicated),
		}))
	}
	if len(parts) == 0 {
		return Result{}
	}
	return Failed(strings.Join(parts, "; "))
}

func joinPaths(run []branchAt) string {
	paths := make([]string, len(run))
	for i, ba := range run {
		paths[i] = "#" + ba.path
	}
	return strings.Join(paths, ", ")
}
