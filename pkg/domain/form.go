package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FormBlock asks the user a series of questions and exports the answers.
type FormBlock struct {
	ID                       string             `json:"block_id"`
	FormName                 string             `json:"form_name"`
	Members                  []FormMemberConfig `json:"members"`
	Messages                 FormMessages       `json:"messages"`
	ResultsExport            FormResultsExport  `json:"results_export"`
	FormCompletedNextBlockID *string            `json:"form_completed_next_block_id"`
	FormCancelledNextBlockID *string            `json:"form_cancelled_next_block_id"`
	Extra                    Extra              `json:"-"`
}

func (b *FormBlock) RewriteRefs(fn func(*string) *string) {
	rewrite(&b.FormCompletedNextBlockID, fn)
	rewrite(&b.FormCancelledNextBlockID, fn)
}

// FormMessages are the service messages shown while a form is filled in.
type FormMessages struct {
	FormStart               LocalizableText `json:"form_start"`
	CancelCommandIs         LocalizableText `json:"cancel_command_is"`
	FieldIsSkippable        LocalizableText `json:"field_is_skippable"`
	FieldIsNotSkippable     LocalizableText `json:"field_is_not_skippable"`
	PleaseEnterCorrectValue LocalizableText `json:"please_enter_correct_value"`
	UnsupportedCommand      LocalizableText `json:"unsupported_command"`
	Extra                   Extra           `json:"-"`
}

// FormMessage is one named entry of FormMessages.
type FormMessage struct {
	Key  string
	Text LocalizableText
}

// Entries returns the messages in their wire order.
func (m FormMessages) Entries() []FormMessage {
	return []FormMessage{
		{"form_start", m.FormStart},
		{"cancel_command_is", m.CancelCommandIs},
		{"field_is_skippable", m.FieldIsSkippable},
		{"field_is_not_skippable", m.FieldIsNotSkippable},
		{"please_enter_correct_value", m.PleaseEnterCorrectValue},
		{"unsupported_command", m.UnsupportedCommand},
	}
}

type FormResultsExport struct {
	UserAttribution string                   `json:"user_attribution,omitempty"`
	EchoToUser      bool                     `json:"echo_to_user"`
	IsAnonymous     bool                     `json:"is_anonymous"`
	ToChat          *FormResultsExportToChat `json:"to_chat"`
	ToStore         bool                     `json:"to_store"`
	Extra           Extra                    `json:"-"`
}

type FormResultsExportToChat struct {
	ChatID             ChatID `json:"chat_id"`
	ViaFeedbackHandler bool   `json:"via_feedback_handler"`
	Extra              Extra  `json:"-"`
}

// ChatID is a Telegram chat: a numeric ID or a public @username.
type ChatID struct {
	Numeric  int64
	Username string
}

// IsPlaceholder reports whether no chat has been chosen yet.
func (c ChatID) IsPlaceholder() bool {
	return c.Username == "" && c.Numeric == PlaceholderChatID
}

func (c ChatID) String() string {
	if c.Username != "" {
		return c.Username
	}
	return strconv.FormatInt(c.Numeric, 10)
}

func (c ChatID) MarshalJSON() ([]byte, error) {
	if c.Username != "" {
		return json.Marshal(c.Username)
	}
	return json.Marshal(c.Numeric)
}

func (c *ChatID) UnmarshalJSON(data []byte) error {
	*c = ChatID{}
	if isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, &c.Numeric); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, &c.Username); err != nil {
		return fmt.Errorf("chat id must be a number or a string: %w", err)
	}
	return nil
}

// BaseFormField holds the attributes common to all form fields.
type BaseFormField struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Prompt     LocalizableText `json:"prompt"`
	IsRequired bool            `json:"is_required"`
	// "auto", an options object or null; kept verbatim.
	ResultFormatting json.RawMessage `json:"result_formatting"`
}

type PlainTextField struct {
	BaseFormField
	IsLongText        bool            `json:"is_long_text"`
	EmptyTextErrorMsg LocalizableText `json:"empty_text_error_msg"`
	Extra             Extra           `json:"-"`
}

type SingleSelectField struct {
	BaseFormField
	Options             []EnumOption    `json:"options"`
	InvalidEnumErrorMsg LocalizableText `json:"invalid_enum_error_msg"`
	Extra               Extra           `json:"-"`
}

type EnumOption struct {
	ID    string          `json:"id"`
	Label LocalizableText `json:"label"`
	Extra Extra           `json:"-"`
}

// OptionIDs returns the IDs of the field options in order.
func (f *SingleSelectField) OptionIDs() []string {
	ids := make([]string, len(f.Options))
	for i, o := range f.Options {
		ids[i] = o.ID
	}
	return ids
}

// FormFieldKind names a form field variant.
type FormFieldKind string

const (
	FieldPlainText    FormFieldKind = "plain_text"
	FieldSingleSelect FormFieldKind = "single_select"
)

// FormField is implemented by *PlainTextField and *SingleSelectField.
type FormField interface {
	Base() *BaseFormField
	FieldKind() FormFieldKind
	formField()
}

func (f *PlainTextField) Base() *BaseFormField    { return &f.BaseFormField }
func (f *SingleSelectField) Base() *BaseFormField { return &f.BaseFormField }

func (*PlainTextField) FieldKind() FormFieldKind    { return FieldPlainText }
func (*SingleSelectField) FieldKind() FormFieldKind { return FieldSingleSelect }

func (*PlainTextField) formField()    {}
func (*SingleSelectField) formField() {}

var formFieldDecoders = map[string]variantDecoder[FormField]{
	string(FieldPlainText):    decodeInto(func(f *PlainTextField) FormField { return f }),
	string(FieldSingleSelect): decodeInto(func(f *SingleSelectField) FormField { return f }),
}

// FormFieldConfig is the wire wrapper of a FormField.
type FormFieldConfig struct {
	Variant FormField
	Extra   Extra
}

// SingleSelect returns the single select variant, or nil.
func (c *FormFieldConfig) SingleSelect() *SingleSelectField {
	f, _ := c.Variant.(*SingleSelectField)
	return f
}

func (c FormFieldConfig) MarshalJSON() ([]byte, error) {
	if c.Variant == nil {
		return encodeVariant("", nil, c.Extra)
	}
	return encodeVariant(string(c.Variant.FieldKind()), c.Variant, c.Extra)
}

func (c *FormFieldConfig) UnmarshalJSON(data []byte) error {
	v, extra, err := decodeVariant(data, formFieldDecoders)
	if err != nil {
		return err
	}
	c.Variant, c.Extra = v, extra
	return nil
}

// FormBranch is a group of members shown only when the preceding single
// select field was answered with ConditionMatchValue.
type FormBranch struct {
	Members             []FormMemberConfig `json:"members"`
	ConditionMatchValue *string            `json:"condition_match_value"`
	Extra               Extra              `json:"-"`
}

// FormMember is implemented by *FormFieldConfig and *FormBranch.
type FormMember interface {
	formMember()
}

func (*FormFieldConfig) formMember() {}
func (*FormBranch) formMember()      {}

var formMemberDecoders = map[string]variantDecoder[FormMember]{
	"field":  decodeInto(func(f *FormFieldConfig) FormMember { return f }),
	"branch": decodeInto(func(b *FormBranch) FormMember { return b }),
}

// FormMemberConfig is the wire wrapper of a FormMember.
type FormMemberConfig struct {
	Variant FormMember
	Extra   Extra
}

// FieldMember wraps f as a form member.
func FieldMember(f FormField) FormMemberConfig {
	return FormMemberConfig{Variant: &FormFieldConfig{Variant: f}}
}

// BranchMember wraps b as a form member.
func BranchMember(b *FormBranch) FormMemberConfig {
	return FormMemberConfig{Variant: b}
}

// Field returns the field of the member, or nil if it is not a recognized
// field.
func (c FormMemberConfig) Field() FormField {
	if fc, ok := c.Variant.(*FormFieldConfig); ok {
		return fc.Variant
	}
	return nil
}

// Branch returns the branch of the member, or nil.
func (c FormMemberConfig) Branch() *FormBranch {
	b, _ := c.Variant.(*FormBranch)
	return b
}

func (c FormMemberConfig) MarshalJSON() ([]byte, error) {
	switch v := c.Variant.(type) {
	case *FormFieldConfig:
		return encodeVariant("field", v, c.Extra)
	case *FormBranch:
		return encodeVariant("branch", v, c.Extra)
	default:
		return encodeVariant("", nil, c.Extra)
	}
}

func (c *FormMemberConfig) UnmarshalJSON(data []byte) error {
	v, extra, err := decodeVariant(data, formMemberDecoders)
	if err != nil {
		return err
	}
	c.Variant, c.Extra = v, extra
	return nil
}

// FlattenedFormFields returns every field of the member tree, depth first,
// in document order.
func FlattenedFormFields(members []FormMemberConfig) []FormField {
	var out []FormField
	WalkFormMembers(members, func(m *FormMemberConfig) {
		if f := m.Field(); f != nil {
			out = append(out, f)
		}
	})
	return out
}

// FlattenedFormBranches returns every branch of the member tree, depth
// first, in document order.
func FlattenedFormBranches(members []FormMemberConfig) []*FormBranch {
	var out []*FormBranch
	WalkFormMembers(members, func(m *FormMemberConfig) {
		if b := m.Branch(); b != nil {
			out = append(out, b)
		}
	})
	return out
}

// WalkFormMembers calls fn for every member of the tree, depth first.
// A branch is visited before its own members.
func WalkFormMembers(members []FormMemberConfig, fn func(m *FormMemberConfig)) {
	for i := range members {
		fn(&members[i])
		if b := members[i].Branch(); b != nil {
			WalkFormMembers(b.Members, fn)
		}
	}
}

func (b FormBlock) MarshalJSON() ([]byte, error) {
	type plain FormBlock
	return encodeOpen(plain(b), b.Extra)
}

func (b *FormBlock) UnmarshalJSON(data []byte) error {
	type plain FormBlock
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (m FormMessages) MarshalJSON() ([]byte, error) {
	type plain FormMessages
	return encodeOpen(plain(m), m.Extra)
}

func (m *FormMessages) UnmarshalJSON(data []byte) error {
	type plain FormMessages
	extra, err := decodeOpen(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (e FormResultsExport) MarshalJSON() ([]byte, error) {
	type plain FormResultsExport
	return encodeOpen(plain(e), e.Extra)
}

func (e *FormResultsExport) UnmarshalJSON(data []byte) error {
	type plain FormResultsExport
	extra, err := decodeOpen(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (c FormResultsExportToChat) MarshalJSON() ([]byte, error) {
	type plain FormResultsExportToChat
	return encodeOpen(plain(c), c.Extra)
}

func (c *FormResultsExportToChat) UnmarshalJSON(data []byte) error {
	type plain FormResultsExportToChat
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (f PlainTextField) MarshalJSON() ([]byte, error) {
	type plain PlainTextField
	return encodeOpen(plain(f), f.Extra)
}

func (f *PlainTextField) UnmarshalJSON(data []byte) error {
	type plain PlainTextField
	extra, err := decodeOpen(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (f SingleSelectField) MarshalJSON() ([]byte, error) {
	type plain SingleSelectField
	return encodeOpen(plain(f), f.Extra)
}

func (f *SingleSelectField) UnmarshalJSON(data []byte) error {
	type plain SingleSelectField
	extra, err := decodeOpen(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (o EnumOption) MarshalJSON() ([]byte, error) {
	type plain EnumOption
	return encodeOpen(plain(o), o.Extra)
}

func (o *EnumOption) UnmarshalJSON(data []byte) error {
	type plain EnumOption
	extra, err := decodeOpen(data, (*plain)(o))
	o.Extra = extra
	return err
}

func (b FormBranch) MarshalJSON() ([]byte, error) {
	type plain FormBranch
	return encodeOpen(plain(b), b.Extra)
}

func (b *FormBranch) UnmarshalJSON(data []byte) error {
	type plain FormBranch
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}
