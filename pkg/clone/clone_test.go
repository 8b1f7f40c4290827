package clone

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/domain"
)

func TestEntrypoint(t *testing.T) {
	orig := domain.WrapEntryPoint(&domain.CommandEntryPoint{
		ID:          "cmd",
		Command:     "help",
		NextBlockID: domain.Ref("block"),
		Scope:       "private",
	})

	tn, err := Entrypoint(orig)
	require.NoError(t, err)

	assert.Equal(t, domain.KindEntrypoint, tn.Kind)
	assert.Equal(t, domain.TypeCommand, tn.TypeKey)
	assert.True(t, strings.HasPrefix(tn.ID, "entrypoint-command-"))

	cmd := tn.Config.(*domain.CommandEntryPoint)
	assert.Equal(t, tn.ID, cmd.ID)
	assert.Nil(t, cmd.NextBlockID)
	assert.Equal(t, "help", cmd.Command)

	cmd.Command = "changed"
	assert.Equal(t, "help", orig.Command().Command)
	assert.Equal(t, "block", *orig.Command().NextBlockID)
}

func TestUnknownVariant(t *testing.T) {
	_, err := Entrypoint(domain.EntryPointConfig{})
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)

	_, err = Block(domain.BlockConfig{Extra: domain.Extra{"webhook": json.RawMessage(`{}`)}})
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
}

func TestBlock_FormUnknownMember(t *testing.T) {
	tests := []struct {
		name    string
		members string
	}{
		{"unknown field", `[{"field": {"multi_select": {"id": "field-1", "options": [{"id": "o1"}]}}}]`},
		{"unknown member", `[{"group": {"members": []}}]`},
		{"nested in branch", `[
			{"field": {"single_select": {"id": "field-1", "name": "q", "prompt": "q?", "is_required": true,
				"options": [{"id": "o1", "label": "A"}], "invalid_enum_error_msg": "no", "result_formatting": "auto"}}},
			{"branch": {"condition_match_value": "o1", "members": [{"field": {"date": {"id": "field-2"}}}]}}
		]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b domain.BlockConfig
			require.NoError(t, json.Unmarshal([]byte(`{"form": {"block_id": "form", "form_name": "f", "members": `+tt.members+`}}`), &b))
			require.NotNil(t, b.Form())

			_, err := Block(b)
			assert.ErrorIs(t, err, domain.ErrUnknownVariant)
		})
	}
}

// Cloning a menu nulls its links and keeps the labels verbatim.
func TestBlock_Menu(t *testing.T) {
	label := domain.Localized(map[string]string{"en": "One", "ru": "Один"})
	orig := domain.WrapBlock(&domain.MenuBlock{
		ID: "menu",
		Menu: domain.Menu{
			Text: domain.Text("Pick"),
			Items: []domain.MenuItem{
				{Label: label, NextBlockID: domain.Ref("a")},
				{Label: domain.Text("Two"), NextBlockID: domain.Ref("b")},
				{Label: domain.Text("Site"), LinkURL: domain.Ref("https://example.org")},
			},
		},
	})

	tn, err := Block(orig)
	require.NoError(t, err)
	menu := tn.Config.(*domain.MenuBlock)

	assert.Nil(t, menu.Menu.Items[0].NextBlockID)
	assert.Nil(t, menu.Menu.Items[1].NextBlockID)
	assert.Equal(t, "https://example.org", *menu.Menu.Items[2].LinkURL)
	assert.Equal(t, label, menu.Menu.Items[0].Label)
	assert.Equal(t, domain.Text("Two"), menu.Menu.Items[1].Label)

	// apart from the ID and links the clone equals the source
	origCopy, err := orig.Copy()
	require.NoError(t, err)
	origCopy.Variant.SetNodeID(tn.ID)
	domain.ClearRefs(origCopy.Variant)
	assert.Equal(t, origCopy.Variant, tn.Config)

	menu.Menu.Items[0].Label.Localized["en"] = "changed"
	assert.Equal(t, "One", label.Localized["en"])
}

func TestBlock_Form(t *testing.T) {
	orig := domain.WrapBlock(&domain.FormBlock{
		ID:       "form",
		FormName: "form-old",
		Members: []domain.FormMemberConfig{
			domain.FieldMember(&domain.SingleSelectField{
				BaseFormField: domain.BaseFormField{ID: "f1", Name: "color"},
				Options: []domain.EnumOption{
					{ID: "red", Label: domain.Text("Red")},
					{ID: "blue", Label: domain.Text("Blue")},
				},
			}),
			domain.BranchMember(&domain.FormBranch{
				ConditionMatchValue: domain.Ref("red"),
				Members: []domain.FormMemberConfig{
					domain.FieldMember(&domain.PlainTextField{BaseFormField: domain.BaseFormField{ID: "f2"}}),
				},
			}),
			domain.BranchMember(&domain.FormBranch{ConditionMatchValue: domain.Ref("blue")}),
			domain.BranchMember(&domain.FormBranch{ConditionMatchValue: domain.Ref("gone")}),
		},
		FormCompletedNextBlockID: domain.Ref("done"),
		FormCancelledNextBlockID: domain.Ref("cancel"),
	})

	tn, err := Block(orig)
	require.NoError(t, err)
	form := tn.Config.(*domain.FormBlock)

	assert.NotEqual(t, "form-old", form.FormName)
	assert.True(t, strings.HasPrefix(form.FormName, "form-"))
	assert.Nil(t, form.FormCompletedNextBlockID)
	assert.Nil(t, form.FormCancelledNextBlockID)

	fields := domain.FlattenedFormFields(form.Members)
	require.Len(t, fields, 2)
	assert.True(t, strings.HasPrefix(fields[0].Base().ID, "form_field_"))
	assert.True(t, strings.HasPrefix(fields[1].Base().ID, "form_field_"))

	ss := fields[0].(*domain.SingleSelectField)
	assert.NotEqual(t, "red", ss.Options[0].ID)
	assert.NotEqual(t, "blue", ss.Options[1].ID)

	branches := domain.FlattenedFormBranches(form.Members)
	require.Len(t, branches, 3)
	assert.Equal(t, ss.Options[0].ID, *branches[0].ConditionMatchValue)
	assert.Equal(t, ss.Options[1].ID, *branches[1].ConditionMatchValue)
	assert.Equal(t, "gone", *branches[2].ConditionMatchValue, "unmapped condition kept")

	// the source keeps its identifiers
	origForm := orig.Form()
	assert.Equal(t, "form-old", origForm.FormName)
	assert.Equal(t, "red", *domain.FlattenedFormBranches(origForm.Members)[0].ConditionMatchValue)
}

func TestBlock_WithExistingAvoidsCollisions(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	tn, err := Block(domain.WrapBlock(&domain.ContentBlock{ID: "c"}), WithExisting(&flow))
	require.NoError(t, err)
	assert.False(t, flow.HasNode(tn.ID))
}

func TestTentativeNode_JSON(t *testing.T) {
	tn, err := Block(domain.WrapBlock(&domain.ContentBlock{ID: "c", NextBlockID: domain.Ref("x")}))
	require.NoError(t, err)

	data, err := json.Marshal(tn)
	require.NoError(t, err)

	var decoded struct {
		Kind    string             `json:"kind"`
		TypeKey string             `json:"type_key"`
		ID      string             `json:"id"`
		Config  domain.BlockConfig `json:"config"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "block", decoded.Kind)
	assert.Equal(t, "content", decoded.TypeKey)
	id, err := decoded.Config.ID()
	require.NoError(t, err)
	assert.Equal(t, tn.ID, id)
}
