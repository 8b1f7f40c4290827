/*
Package dsl provides a fluent Go builder for bot flows.

It is the programmatic counterpart of the visual editor: entrypoints and
blocks are declared with typed builders, linked by ID and compiled into a
domain.UserFlowConfig. Nodes without a pinned position are placed on the
canvas with the layout package, so the result opens cleanly in the editor.

Example usage:

	b := dsl.New()

	b.Start().Go("menu")

	b.Menu("menu").
		Text(dsl.T("What would you like to do?")).
		Item(dsl.T("Read the news"), "news").
		Item(dsl.T("Leave feedback"), "feedback")

	b.Content("news").
		Text(dsl.T("Nothing new today."))

	yes, no := dsl.Opt(dsl.T("Yes")), dsl.Opt(dsl.T("No"))
	form := b.Form("feedback").OnComplete("menu")
	form.Select("liked", dsl.T("Did you like the bot?"), true, yes, no)
	form.Branch(no.ID, func(m *dsl.MembersBuilder) {
		m.PlainText("why", dsl.T("What went wrong?"), false)
	})

	flow, err := b.Build()
*/
package dsl
