package template

import (
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/dsl"
	"github.com/aretw0/flowstudio/pkg/idgen"
)

// Survey returns a template of a feedback form followed by a thank-you
// message, reachable with /command.
func Survey(command string) Template {
	formID := idgen.NodeID(domain.KindBlock, domain.TypeForm)
	thanksID := idgen.NodeID(domain.KindBlock, domain.TypeContent)

	b := dsl.New()
	good, bad := dsl.Opt(dsl.T("Good")), dsl.Opt(dsl.T("Could be better"))
	form := b.Form(formID).OnComplete(thanksID)
	form.Select("rating", dsl.T("How do you like our service?"), true, good, bad)
	form.Branch(bad.ID, func(m *dsl.MembersBuilder) {
		m.PlainText("improvements", dsl.T("What should we improve?"), false)
	})
	form.PlainText("contact", dsl.T("How can we contact you?"), false)
	b.Content(thanksID).Text(dsl.T("Thank you for your feedback!"))
	b.At(formID, 0, 130).At(thanksID, 0, 460)

	return Template{
		Config:       b.MustBuild(),
		EntryBlockID: formID,
		CustomStartCmd: &domain.CommandEntryPoint{
			ID:      idgen.NodeID(domain.KindEntrypoint, domain.TypeCommand),
			Command: command,
			Scope:   "private",
		},
	}
}
