/*
Package flowstudio is the authoring core of a visual editor for chat bot flows.

A bot flow is a graph of entrypoints (commands, catch-all, regex triggers) and
blocks (content, menus, forms, human operator hand-off, language selection)
linked by ID. The editor keeps the graph valid while the user works on it.

# Key Features

  - Localization-aware validation: every node is checked and all problems are
    reported at once, in the language of the editor UI.
  - Cloning: nodes and whole selections are duplicated with fresh IDs; links
    inside the selection and form branch conditions follow the copies.
  - Layout: new nodes and merged templates are placed where they overlap nothing.
  - Storage: configs are kept in memory, files, Redis or SQLite (with history).

# Usage

	studio := flowstudio.New(flowstudio.WithStore(file.New("./configs")))

	flow := domain.NewUserFlowConfig()
	flow, err := studio.ApplyTemplate(flow, "survey")
	if err != nil {
		log.Fatal(err)
	}

	report := studio.ValidateFlow(&flow, "ru")
	for _, n := range report.Failed() {
		log.Println(n.ID, n.Result.Errors)
	}

	cfg := &domain.BotConfig{DisplayName: "Survey bot", UserFlowConfig: flow}
	err = studio.Save(ctx, "survey-bot", cfg, flowstudio.SaveOptions{Message: "first draft"})

The HTTP (pkg/adapters/http) and MCP (pkg/adapters/mcp) adapters expose a
Studio to the browser editor and to AI agents; cmd/flowstudio wraps it in a CLI.
*/
package flowstudio
