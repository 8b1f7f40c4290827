package dsl

import (
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/idgen"
)

// FormBuilder configures a form block.
type FormBuilder struct {
	MembersBuilder
	block *domain.FormBlock
}

func (f *FormBuilder) build() (domain.Node, error) {
	f.block.Members = f.members
	return f.block, nil
}

// DefaultFormMessages are the English service messages of a new form.
func DefaultFormMessages() domain.FormMessages {
	return domain.FormMessages{
		FormStart:               T("Please fill in the form. You can cancel at any time."),
		CancelCommandIs:         T("To cancel, use the command"),
		FieldIsSkippable:        T("This field can be skipped with the command"),
		FieldIsNotSkippable:     T("This field is required"),
		PleaseEnterCorrectValue: T("Please enter a correct value"),
		UnsupportedCommand:      T("Unsupported command"),
	}
}

// Form adds a form block that echoes the answers back to the user.
func (b *Builder) Form(id string) *FormBuilder {
	f := &FormBuilder{block: &domain.FormBlock{
		ID:            id,
		FormName:      idgen.FormName(),
		Messages:      DefaultFormMessages(),
		ResultsExport: domain.FormResultsExport{EchoToUser: true},
	}}
	b.add(id, f)
	return f
}

// Name sets the form name.
func (f *FormBuilder) Name(name string) *FormBuilder {
	f.block.FormName = name
	return f
}

// Messages replaces the service messages.
func (f *FormBuilder) Messages(m domain.FormMessages) *FormBuilder {
	f.block.Messages = m
	return f
}

// ToChat sends the results to a chat.
func (f *FormBuilder) ToChat(chatID int64) *FormBuilder {
	f.block.ResultsExport.ToChat = &domain.FormResultsExportToChat{ChatID: domain.ChatID{Numeric: chatID}}
	return f
}

// ToStore keeps the results in the bot storage.
func (f *FormBuilder) ToStore() *FormBuilder {
	f.block.ResultsExport.ToStore = true
	return f
}

// OnComplete links the block shown after the form is filled in.
func (f *FormBuilder) OnComplete(target string) *FormBuilder {
	f.block.FormCompletedNextBlockID = domain.Ref(target)
	return f
}

// OnCancel links the block shown after the form is cancelled.
func (f *FormBuilder) OnCancel(target string) *FormBuilder {
	f.block.FormCancelledNextBlockID = domain.Ref(target)
	return f
}

// MembersBuilder collects the members of a form or a branch.
type MembersBuilder struct {
	members []domain.FormMemberConfig
}

// Option is a single select choice.
type Option struct {
	ID    string
	Label domain.LocalizableText
}

// Opt returns a choice with a generated ID.
func Opt(label domain.LocalizableText) Option {
	return Option{ID: idgen.OptionID(), Label: label}
}

// PlainText adds a free text question.
func (m *MembersBuilder) PlainText(name string, prompt domain.LocalizableText, required bool) *MembersBuilder {
	m.members = append(m.members, domain.FieldMember(&domain.PlainTextField{
		BaseFormField:     field(name, prompt, required),
		EmptyTextErrorMsg: T("Please enter some text"),
	}))
	return m
}

// Select adds a single select question.
func (m *MembersBuilder) Select(name string, prompt domain.LocalizableText, required bool, options ...Option) *MembersBuilder {
	ss := &domain.SingleSelectField{
		BaseFormField:       field(name, prompt, required),
		Options:             make([]domain.EnumOption, len(options)),
		InvalidEnumErrorMsg: T("Please choose one of the options"),
	}
	for i, o := range options {
		ss.Options[i] = domain.EnumOption{ID: o.ID, Label: o.Label}
	}
	m.members = append(m.members, domain.FieldMember(ss))
	return m
}

// Branch adds members shown only when the preceding select was answered
// with the option optionID.
func (m *MembersBuilder) Branch(optionID string, fn func(b *MembersBuilder)) *MembersBuilder {
	var nested MembersBuilder
	fn(&nested)
	m.members = append(m.members, domain.BranchMember(&domain.FormBranch{
		Members:             nested.members,
		ConditionMatchValue: domain.Ref(optionID),
	}))
	return m
}

func field(name string, prompt domain.LocalizableText, required bool) domain.BaseFormField {
	return domain.BaseFormField{
		ID:               idgen.FieldID(),
		Name:             name,
		Prompt:           prompt,
		IsRequired:       required,
		ResultFormatting: []byte(`"auto"`),
	}
}
