package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstudio/pkg/domain"
)

// GraphOverlay contains editor state to highlight on the graph.
type GraphOverlay struct {
	InvalidNodes []string
	SelectedNode string
	// Language picks the label language of localized texts.
	Language string
}

type edge struct {
	to    string
	label string
}

// GenerateMermaid produces a Mermaid flowchart of the flow.
// It applies semantic styling:
// - Entrypoint: ((Circle))
// - Menu: {{Hexagon}}
// - Form: [/Parallelogram/]
// - Human operator: [[Subroutine]]
// - Language select: {Rhombus}
// - Default: [Rectangle]
// Links to missing blocks are dotted. Overlay styles are applied if provided.
func GenerateMermaid(flow *domain.UserFlowConfig, overlay *GraphOverlay) string {
	lang := ""
	if overlay != nil {
		lang = overlay.Language
	}
	known := make(map[string]bool)
	for _, id := range flow.NodeIDs() {
		known[id] = true
	}
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes() {
		safeID := sanitizeMermaidID(node.NodeID())

		opener, closer := "[", "]"
		title := node.NodeID()
		switch n := node.(type) {
		case domain.EntryPoint:
			opener, closer = "((", "))"
			if cmd, ok := n.(*domain.CommandEntryPoint); ok {
				title = "/" + cmd.Command
			}
		case *domain.MenuBlock:
			opener, closer = "{{", "}}"
		case *domain.FormBlock:
			opener, closer = "[/", "/]"
		case *domain.HumanOperatorBlock:
			opener, closer = "[[", "]]"
		case *domain.LanguageSelectBlock:
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", safeID, opener, escape(title), node.TypeKey(), closer)

		for _, e := range edges(node, lang) {
			arrow := "-->"
			if !known[e.to] {
				arrow = "-.->"
			}
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(e.label))
				if !known[e.to] {
					arrow = fmt.Sprintf("-. \"%s\" .->", escape(e.label))
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.to))
		}
	}

	if overlay != nil && (len(overlay.InvalidNodes) > 0 || overlay.SelectedNode != "") {
		sb.WriteString("\n    %% Overlay Styles\n")
		// black text stays readable on both light and dark themes
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.InvalidNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s invalid;\n", safeID)
			}
		}
		if overlay.SelectedNode != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.SelectedNode))
		}
	}

	return sb.String()
}

func edges(node domain.Node, lang string) []edge {
	var out []edge
	add := func(ref *string, label string) {
		if ref != nil {
			out = append(out, edge{to: *ref, label: label})
		}
	}
	switch n := node.(type) {
	case *domain.MenuBlock:
		n.Menu.Walk(func(item *domain.MenuItem) {
			add(item.NextBlockID, label(item.Label, lang))
		})
	case *domain.FormBlock:
		add(n.FormCompletedNextBlockID, "completed")
		add(n.FormCancelledNextBlockID, "cancelled")
	case *domain.LanguageSelectBlock:
		add(n.LanguageSelectedNextBlockID, "selected")
		add(n.NextBlockID, "")
	default:
		for _, ref := range domain.Refs(n) {
			out = append(out, edge{to: ref})
		}
	}
	return out
}

// label picks the text in lang, falling back to the first language.
func label(t domain.LocalizableText, lang string) string {
	if !t.IsLocalized() {
		return t.Plain
	}
	if s, ok := t.Localized[lang]; ok {
		return s
	}
	if langs := t.Languages(); len(langs) > 0 {
		return t.Localized[langs[0]]
	}
	return ""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
