package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFlow = `{
  "entrypoints": [
    {"command": {"entrypoint_id": "default-start-command", "command": "start", "next_block_id": "block-menu-1", "scope": "private"}},
    {"regex": {"entrypoint_id": "entrypoint-regex-1", "regex": "^hi", "next_block_id": null}},
    {"webhook": {"entrypoint_id": "entrypoint-webhook-1"}}
  ],
  "blocks": [
    {"menu": {"block_id": "block-menu-1", "menu": {"text": "Pick", "items": [
      {"label": "About", "next_block_id": "block-content-1"},
      {"label": "More", "submenu": {"text": "More", "items": [{"label": "Site", "link_url": "https://example.org"}], "config": {"mechanism": "inline_buttons", "back_label": "Back", "lock_after_termination": false}}}
    ], "config": {"mechanism": "inline_buttons", "back_label": null, "lock_after_termination": false}}}},
    {"content": {"block_id": "block-content-1", "contents": [{"text": {"text": "Hello", "markup": "markdown"}, "attachments": []}], "next_block_id": null, "future_flag": true}},
    {"form": {"block_id": "block-form-1", "form_name": "form-1", "members": [
      {"field": {"single_select": {"id": "f1", "name": "color", "prompt": "Color?", "is_required": true, "result_formatting": "auto", "options": [{"id": "o1", "label": "Red"}, {"id": "o2", "label": "Blue"}], "invalid_enum_error_msg": "Pick one"}}},
      {"branch": {"condition_match_value": "o1", "members": [
        {"field": {"plain_text": {"id": "f2", "name": "why", "prompt": "Why?", "is_required": false, "result_formatting": null, "is_long_text": true, "empty_text_error_msg": "Empty"}}}
      ]}}
    ], "messages": {"form_start": "a", "cancel_command_is": "b", "field_is_skippable": "c", "field_is_not_skippable": "d", "please_enter_correct_value": "e", "unsupported_command": "f"},
    "results_export": {"echo_to_user": false, "is_anonymous": false, "to_chat": {"chat_id": "@channel", "via_feedback_handler": false}, "to_store": false},
    "form_completed_next_block_id": null, "form_cancelled_next_block_id": null}}
  ],
  "node_display_coords": {"default-start-command": {"x": 0, "y": 0}, "block-menu-1": {"x": 300, "y": 10.5}},
  "schema_version": 3
}`

func TestUserFlowConfig_Decode(t *testing.T) {
	var flow UserFlowConfig
	require.NoError(t, json.Unmarshal([]byte(sampleFlow), &flow))

	require.Len(t, flow.Entrypoints, 3)
	require.Len(t, flow.Blocks, 3)

	start := flow.Entrypoints[0].Command()
	require.NotNil(t, start)
	assert.Equal(t, DefaultStartCommandID, start.ID)
	assert.Equal(t, "block-menu-1", *start.NextBlockID)

	assert.Nil(t, flow.Entrypoints[2].Variant, "unknown variant is carried, not rejected")
	_, err := flow.Entrypoints[2].ID()
	assert.ErrorIs(t, err, ErrUnknownVariant)

	menu, ok := flow.Blocks[0].Variant.(*MenuBlock)
	require.True(t, ok)
	assert.Nil(t, menu.Menu.Config.BackLabel)
	require.NotNil(t, menu.Menu.Items[1].Submenu)
	assert.Equal(t, "Back", menu.Menu.Items[1].Submenu.Config.BackLabel.Plain)

	form := flow.Blocks[2].Form()
	require.NotNil(t, form)
	fields := FlattenedFormFields(form.Members)
	require.Len(t, fields, 2)
	assert.Equal(t, FieldSingleSelect, fields[0].FieldKind())
	assert.Equal(t, "f2", fields[1].Base().ID)
	assert.Len(t, FlattenedFormBranches(form.Members), 1)
	assert.Equal(t, "@channel", form.ResultsExport.ToChat.ChatID.Username)

	assert.Equal(t, 10.5, flow.NodeDisplayCoords["block-menu-1"].Y)
}

func TestUserFlowConfig_RoundTripKeepsUnknownKeys(t *testing.T) {
	var flow UserFlowConfig
	require.NoError(t, json.Unmarshal([]byte(sampleFlow), &flow))

	out, err := json.Marshal(flow)
	require.NoError(t, err)

	assert.JSONEq(t, sampleFlow, string(out))
}

func TestDecodeVariant_MultipleVariants(t *testing.T) {
	var ep EntryPointConfig
	err := json.Unmarshal([]byte(`{"command": {"entrypoint_id": "a"}, "catch_all": {"entrypoint_id": "b"}}`), &ep)
	assert.ErrorIs(t, err, ErrMultipleVariants)
}

func TestDecodeVariant_NullVariantsIgnored(t *testing.T) {
	var ep EntryPointConfig
	require.NoError(t, json.Unmarshal([]byte(`{"command": null, "catch_all": {"entrypoint_id": "b", "next_block_id": null}}`), &ep))

	id, err := ep.ID()
	require.NoError(t, err)
	assert.Equal(t, "b", id)
	assert.Equal(t, TypeCatchAll, ep.Variant.TypeKey())
}

func TestDecodeVariant_PayloadError(t *testing.T) {
	var b BlockConfig
	err := json.Unmarshal([]byte(`{"content": {"block_id": 42}}`), &b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")
}

func TestLocalizableText_JSON(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		localized bool
		plain     string
	}{
		{"string", `"hello"`, false, "hello"},
		{"empty string", `""`, false, ""},
		{"map", `{"en": "hi", "ru": "привет"}`, true, ""},
		{"empty map", `{}`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var text LocalizableText
			require.NoError(t, json.Unmarshal([]byte(tt.in), &text))
			assert.Equal(t, tt.localized, text.IsLocalized())
			assert.Equal(t, tt.plain, text.Plain)

			out, err := json.Marshal(text)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}

	var text LocalizableText
	assert.Error(t, json.Unmarshal([]byte(`42`), &text))
}

func TestLocalizableText_Languages(t *testing.T) {
	text := Localized(map[string]string{"ru": "a", "en": "b"})
	assert.Equal(t, []string{"en", "ru"}, text.Languages())
	assert.Empty(t, Text("x").Languages())
}

func TestChatID_JSON(t *testing.T) {
	var id ChatID
	require.NoError(t, json.Unmarshal([]byte(`-100123`), &id))
	assert.Equal(t, int64(-100123), id.Numeric)
	assert.False(t, id.IsPlaceholder())

	require.NoError(t, json.Unmarshal([]byte(`0`), &id))
	assert.True(t, id.IsPlaceholder())

	require.NoError(t, json.Unmarshal([]byte(`"@news"`), &id))
	assert.Equal(t, "@news", id.String())

	out, err := json.Marshal(ChatID{Numeric: 7})
	require.NoError(t, err)
	assert.Equal(t, "7", string(out))
}

func TestBlockConfig_CopyDoesNotAlias(t *testing.T) {
	orig := WrapBlock(&ContentBlock{
		ID: "block-content-1",
		Contents: []Content{{
			Text: &ContentText{Text: Localized(map[string]string{"en": "hi"}), Markup: "none"},
		}},
		NextBlockID: Ref("next"),
	})

	cp, err := orig.Copy()
	require.NoError(t, err)

	content := cp.Variant.(*ContentBlock)
	content.Contents[0].Text.Text.Localized["en"] = "changed"
	*content.NextBlockID = "other"

	origContent := orig.Variant.(*ContentBlock)
	assert.Equal(t, "hi", origContent.Contents[0].Text.Text.Localized["en"])
	assert.Equal(t, "next", *origContent.NextBlockID)
}
