package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/domain"
)

func TestValidateFlow(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	flow.Blocks = append(flow.Blocks,
		domain.WrapBlock(&domain.ContentBlock{ID: "c1", Contents: []domain.Content{{Text: &domain.ContentText{Text: domain.Text("hi")}}}}),
		domain.WrapBlock(&domain.ContentBlock{ID: "c1", Contents: []domain.Content{{Text: &domain.ContentText{Text: domain.Text("")}}}}),
		domain.WrapBlock(form(plainField("a"))),
		domain.WrapBlock(func() *domain.FormBlock { f := form(plainField("b")); f.ID = "form-2"; return f }()),
		domain.BlockConfig{Extra: domain.Extra{"webhook": json.RawMessage(`{}`)}},
	)

	report := ValidateFlow(&flow, nil, nil)
	assert.False(t, report.OK())

	require.Len(t, report.Nodes, 5)
	assert.Equal(t, domain.DefaultStartCommandID, report.Nodes[0].ID)
	assert.Equal(t, domain.KindEntrypoint, report.Nodes[0].Kind)
	assert.True(t, report.Nodes[0].Result.OK())
	assert.Equal(t, []string{"Text #1: not filled in"}, report.Nodes[2].Result.Errors)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "c1", failed[0].ID)

	assert.Equal(t, []string{
		"ID c1 is used by more than one node",
		"Form name form-1 is used by blocks form, form-2",
	}, report.Errors)

	require.Len(t, report.Internal, 1)
	assert.ErrorIs(t, report.Internal[0], domain.ErrUnknownVariant)
	assert.Equal(t, "Internal error: block #5 has an unknown type", report.Internal[0].Error())

	err := report.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownVariant))
	assert.Len(t, ValidationErrors(err), 4)
}

func TestValidateFlow_UnknownFormMembers(t *testing.T) {
	unknownMember := domain.FormMemberConfig{Extra: domain.Extra{"group": json.RawMessage(`{}`)}}
	unknownField := domain.FormMemberConfig{Variant: &domain.FormFieldConfig{
		Extra: domain.Extra{"multi_select": json.RawMessage(`{"id": "field-1"}`)},
	}}

	flow := domain.NewUserFlowConfig()
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(form(
		plainField("a"),
		unknownMember,
		selectField("s", "o1"),
		branch("o1", unknownField),
	)))

	report := ValidateFlow(&flow, nil, nil)
	assert.False(t, report.OK())
	assert.Empty(t, report.Failed())

	require.Len(t, report.Internal, 2)
	assert.Equal(t, "Internal error: member #2 of form form has an unknown type", report.Internal[0].Error())
	assert.Equal(t, "Internal error: member #4.1 of form form has an unknown type", report.Internal[1].Error())
	for _, e := range report.Internal {
		assert.ErrorIs(t, e, domain.ErrUnknownVariant)
	}
}

func TestValidateFlow_MultipleLanguageSelect(t *testing.T) {
	prompt := domain.Localized(map[string]string{"en": "?", "ru": "?"})
	ls := func(id string) domain.BlockConfig {
		return domain.WrapBlock(&domain.LanguageSelectBlock{
			ID:                 id,
			MenuConfig:         domain.LanguageSelectionMenuConfig{Prompt: prompt},
			SupportedLanguages: []string{"en", "ru"},
			DefaultLanguage:    "en",
		})
	}
	flow := domain.NewUserFlowConfig()
	flow.Blocks = append(flow.Blocks, ls("l1"), ls("l2"))

	report := ValidateFlow(&flow, domain.LanguageConfigFromFlow(&flow), nil)
	assert.Equal(t, []string{"Only one language selection block is allowed, found 2"}, report.Errors)
}

func TestValidateFlow_OK(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	report := ValidateFlow(&flow, nil, nil)
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
}
