package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Position is the canvas position of a node.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Extra Extra   `json:"-"`
}

// UserFlowConfig is the whole bot flow graph: entrypoints and blocks linked
// by ID, plus the editor canvas positions of the nodes.
type UserFlowConfig struct {
	Entrypoints       []EntryPointConfig  `json:"entrypoints"`
	Blocks            []BlockConfig       `json:"blocks"`
	NodeDisplayCoords map[string]Position `json:"node_display_coords"`
	Extra             Extra               `json:"-"`
}

// BotConfig is the document the editor loads and saves.
type BotConfig struct {
	DisplayName     string         `json:"display_name"`
	TokenSecretName string         `json:"token_secret_name"`
	UserFlowConfig  UserFlowConfig `json:"user_flow_config"`
	Extra           Extra          `json:"-"`
}

// NewUserFlowConfig returns the flow every new bot starts with: an unlinked
// /start command at the origin.
func NewUserFlowConfig() UserFlowConfig {
	return UserFlowConfig{
		Entrypoints: []EntryPointConfig{
			WrapEntryPoint(&CommandEntryPoint{
				ID:      DefaultStartCommandID,
				Command: "start",
				Scope:   "private",
			}),
		},
		Blocks: []BlockConfig{},
		NodeDisplayCoords: map[string]Position{
			DefaultStartCommandID: {X: 0, Y: 0},
		},
	}
}

// Entrypoint returns the entrypoint with the given ID.
func (f *UserFlowConfig) Entrypoint(id string) (EntryPoint, bool) {
	for _, ep := range f.Entrypoints {
		if ep.Variant != nil && ep.Variant.NodeID() == id {
			return ep.Variant, true
		}
	}
	return nil, false
}

// Block returns the block with the given ID.
func (f *UserFlowConfig) Block(id string) (Block, bool) {
	for _, b := range f.Blocks {
		if b.Variant != nil && b.Variant.NodeID() == id {
			return b.Variant, true
		}
	}
	return nil, false
}

// Node returns the entrypoint or block with the given ID.
func (f *UserFlowConfig) Node(id string) (Node, NodeKind, error) {
	if ep, ok := f.Entrypoint(id); ok {
		return ep, KindEntrypoint, nil
	}
	if b, ok := f.Block(id); ok {
		return b, KindBlock, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrNodeNotFound, id)
}

// Nodes returns every recognized node, entrypoints first, in document order.
func (f *UserFlowConfig) Nodes() []Node {
	nodes := make([]Node, 0, len(f.Entrypoints)+len(f.Blocks))
	for _, ep := range f.Entrypoints {
		if ep.Variant != nil {
			nodes = append(nodes, ep.Variant)
		}
	}
	for _, b := range f.Blocks {
		if b.Variant != nil {
			nodes = append(nodes, b.Variant)
		}
	}
	return nodes
}

// NodeIDs returns the IDs of every recognized node, entrypoints first.
// Duplicates are kept.
func (f *UserFlowConfig) NodeIDs() []string {
	nodes := f.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.NodeID()
	}
	return ids
}

// HasNode reports whether id is taken by a node or by a coordinate entry.
func (f *UserFlowConfig) HasNode(id string) bool {
	if _, ok := f.NodeDisplayCoords[id]; ok {
		return true
	}
	return slices.Contains(f.NodeIDs(), id)
}

// LanguageConfigFromFlow derives the bot language settings from its
// language select block. It returns nil for a single-language bot.
func LanguageConfigFromFlow(f *UserFlowConfig) *LanguageConfig {
	for _, b := range f.Blocks {
		if ls := b.LanguageSelect(); ls != nil {
			return &LanguageConfig{
				SupportedLanguageCodes: slices.Clone(ls.SupportedLanguages),
				DefaultLanguageCode:    ls.DefaultLanguage,
			}
		}
	}
	return nil
}

// Copy returns a deep copy of the flow.
func (f UserFlowConfig) Copy() (UserFlowConfig, error) {
	return deepCopy(f)
}

// Prune returns a copy of the flow without integrity leftovers: coordinates
// of nodes that no longer exist are dropped and references to missing blocks
// are unlinked.
func Prune(f UserFlowConfig) (UserFlowConfig, error) {
	out, err := f.Copy()
	if err != nil {
		return UserFlowConfig{}, err
	}

	live := make(map[string]struct{})
	for _, id := range out.NodeIDs() {
		live[id] = struct{}{}
	}
	blocks := make(map[string]struct{})
	for _, b := range out.Blocks {
		if b.Variant != nil {
			blocks[b.Variant.NodeID()] = struct{}{}
		}
	}

	for id := range out.NodeDisplayCoords {
		if _, ok := live[id]; !ok {
			delete(out.NodeDisplayCoords, id)
		}
	}
	for _, n := range out.Nodes() {
		n.RewriteRefs(func(ref *string) *string {
			if ref == nil {
				return nil
			}
			if _, ok := blocks[*ref]; !ok {
				return nil
			}
			return ref
		})
	}
	return out, nil
}

func deepCopy[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("copy: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("copy: %w", err)
	}
	return out, nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	type plain Position
	return encodeOpen(plain(p), p.Extra)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	type plain Position
	extra, err := decodeOpen(data, (*plain)(p))
	p.Extra = extra
	return err
}

func (f UserFlowConfig) MarshalJSON() ([]byte, error) {
	type plain UserFlowConfig
	return encodeOpen(plain(f), f.Extra)
}

func (f *UserFlowConfig) UnmarshalJSON(data []byte) error {
	type plain UserFlowConfig
	extra, err := decodeOpen(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (c BotConfig) MarshalJSON() ([]byte, error) {
	type plain BotConfig
	return encodeOpen(plain(c), c.Extra)
}

func (c *BotConfig) UnmarshalJSON(data []byte) error {
	type plain BotConfig
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}
