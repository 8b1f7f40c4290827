// Package template merges ready-made subgraphs into a bot flow.
package template

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/idgen"
	"github.com/aretw0/flowstudio/pkg/layout"
)

// ErrStartCommandNotFound is returned when the target flow has no default
// /start command entrypoint.
var ErrStartCommandNotFound = errors.New("start command not found in the config")

// ErrTemplateNotFound is returned by Registry.Get for unknown names.
var ErrTemplateNotFound = errors.New("template not found")

// Template is a subgraph to be merged into a flow. EntryBlockID is where the
// flow should enter the template. CustomStartCmd is added when the flow's
// /start command is already in use.
type Template struct {
	Config         domain.UserFlowConfig     `json:"config"`
	EntryBlockID   string                    `json:"entry_block_id"`
	CustomStartCmd *domain.CommandEntryPoint `json:"custom_start_cmd"`
}

// Apply returns a copy of flow with tmpl merged in. If the default /start
// command is not linked yet it is linked to the template entry and the
// template keeps its coordinates. Otherwise the template's custom command is
// added at the template origin and the whole template is shifted along x
// until it clears the existing nodes.
func Apply(flow domain.UserFlowConfig, tmpl Template) (domain.UserFlowConfig, error) {
	out, err := flow.Copy()
	if err != nil {
		return domain.UserFlowConfig{}, err
	}
	t, err := tmpl.Config.Copy()
	if err != nil {
		return domain.UserFlowConfig{}, err
	}

	var start *domain.CommandEntryPoint
	for _, ep := range out.Entrypoints {
		if cmd := ep.Command(); cmd != nil && cmd.ID == domain.DefaultStartCommandID {
			start = cmd
			break
		}
	}
	if start == nil {
		return domain.UserFlowConfig{}, ErrStartCommandNotFound
	}

	out.Entrypoints = append(out.Entrypoints, t.Entrypoints...)
	out.Blocks = append(out.Blocks, t.Blocks...)
	if out.NodeDisplayCoords == nil {
		out.NodeDisplayCoords = make(map[string]domain.Position)
	}

	if start.NextBlockID == nil {
		start.NextBlockID = domain.Ref(tmpl.EntryBlockID)
		for id, p := range t.NodeDisplayCoords {
			out.NodeDisplayCoords[id] = p
		}
		return out, nil
	}

	if tmpl.CustomStartCmd == nil {
		return domain.UserFlowConfig{}, fmt.Errorf("template has no custom start command: %w", ErrStartCommandNotFound)
	}
	custom := *tmpl.CustomStartCmd
	custom.NextBlockID = domain.Ref(tmpl.EntryBlockID)
	coords := make(map[string]domain.Position, len(t.NodeDisplayCoords)+1)
	for id, p := range t.NodeDisplayCoords {
		coords[id] = p
	}
	coords[custom.ID] = domain.Position{}
	out.Entrypoints = append(out.Entrypoints, domain.WrapEntryPoint(&custom))

	existing := layout.BoundingBox(out.NodeDisplayCoords, layout.DefaultNodeWidth, layout.DefaultNodeHeight)
	incoming := layout.BoundingBox(coords, layout.DefaultNodeWidth, layout.DefaultNodeHeight)
	dx := layout.TemplateXOffset(existing, incoming, layout.DefaultMargin)
	for id, p := range layout.Offset(coords, dx, 0) {
		out.NodeDisplayCoords[id] = p
	}
	return out, nil
}

// ContentOnly returns a template of a single content block showing text,
// reachable with /command.
func ContentOnly(text domain.LocalizableText, command string) Template {
	blockID := idgen.NodeID(domain.KindBlock, domain.TypeContent)
	return Template{
		Config: domain.UserFlowConfig{
			Entrypoints: []domain.EntryPointConfig{},
			Blocks: []domain.BlockConfig{
				domain.WrapBlock(&domain.ContentBlock{
					ID: blockID,
					Contents: []domain.Content{{
						Text:        &domain.ContentText{Text: text, Markup: "markdown"},
						Attachments: []domain.Attachment{},
					}},
				}),
			},
			NodeDisplayCoords: map[string]domain.Position{
				blockID: {X: 0, Y: 130},
			},
		},
		EntryBlockID: blockID,
		CustomStartCmd: &domain.CommandEntryPoint{
			ID:      idgen.NodeID(domain.KindEntrypoint, domain.TypeCommand),
			Command: command,
			Scope:   "private",
		},
	}
}

// Factory builds a fresh template. Templates carry generated IDs, so a
// template instance must not be applied twice.
type Factory func() Template

// Registry looks templates up by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("content", func() Template {
		return ContentOnly(domain.Text("Hello! This is a *content* block. Edit me."), "content")
	})
	r.Register("survey", func() Template { return Survey("survey") })
	return r
}

// Register adds or replaces a template.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get builds the template registered under name.
func (r *Registry) Get(name string) (Template, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return f(), nil
}

// Names lists registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
