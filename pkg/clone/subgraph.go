package clone

import (
	"fmt"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/layout"
)

// SubgraphClone is a cloned selection of nodes.
type SubgraphClone struct {
	Nodes []TentativeNode `json:"nodes"`
	// IDs maps every selected node ID to the ID of its clone.
	IDs map[string]string `json:"ids"`
	// Coords holds the positions of the clones.
	Coords map[string]domain.Position `json:"coords"`
}

// SubgraphOptions sizes the nodes for placement.
type SubgraphOptions struct {
	NodeWidth, NodeHeight, Margin float64
	Layout                        []layout.Option
}

// DefaultSubgraphOptions uses the default canvas sizes.
func DefaultSubgraphOptions() SubgraphOptions {
	return SubgraphOptions{
		NodeWidth:  layout.DefaultNodeWidth,
		NodeHeight: layout.DefaultNodeHeight,
		Margin:     layout.DefaultMargin,
	}
}

// Subgraph clones the nodes of flow named by ids. Links between
// selected nodes are redirected to the clones; links leaving the selection
// are removed. The clones keep their relative positions and the group is
// moved to free canvas space; clones of nodes without a position get one of
// their own.
func Subgraph(flow *domain.UserFlowConfig, ids []string, opts SubgraphOptions) (SubgraphClone, error) {
	o := newOptions([]Option{WithExisting(flow)})
	generated := make(map[string]struct{})
	exists := o.exists
	o.exists = func(id string) bool {
		if _, ok := generated[id]; ok {
			return true
		}
		return exists(id)
	}

	out := SubgraphClone{IDs: make(map[string]string), Coords: make(map[string]domain.Position)}
	var selected []domain.Node
	for _, id := range ids {
		if _, dup := out.IDs[id]; dup {
			continue
		}
		node, kind, err := flow.Node(id)
		if err != nil {
			return SubgraphClone{}, fmt.Errorf("clone subgraph: %w", err)
		}
		var tn TentativeNode
		switch n := node.(type) {
		case domain.EntryPoint:
			tn, err = Entrypoint(domain.WrapEntryPoint(n), withOptions(o))
		case domain.Block:
			tn, err = Block(domain.WrapBlock(n), withOptions(o))
		default:
			err = fmt.Errorf("clone subgraph: %s %q: %w", kind, id, domain.ErrUnknownVariant)
		}
		if err != nil {
			return SubgraphClone{}, err
		}
		generated[tn.ID] = struct{}{}
		if f, ok := tn.Config.(*domain.FormBlock); ok {
			generated[f.FormName] = struct{}{}
		}
		out.IDs[id] = tn.ID
		out.Nodes = append(out.Nodes, tn)
		selected = append(selected, node)
	}

	// clones come out unlinked; restore links that stay inside the selection
	for i, orig := range selected {
		refs := collectRefs(orig)
		j := 0
		out.Nodes[i].Config.RewriteRefs(func(*string) *string {
			ref := refs[j]
			j++
			if ref == nil {
				return nil
			}
			if id, ok := out.IDs[*ref]; ok {
				return domain.Ref(id)
			}
			return nil
		})
	}

	selectedCoords := make(map[string]domain.Position)
	for old := range out.IDs {
		if p, ok := flow.NodeDisplayCoords[old]; ok {
			selectedCoords[old] = p
		}
	}
	if len(selectedCoords) > 0 {
		box := layout.BoundingBox(selectedCoords, opts.NodeWidth, opts.NodeHeight)
		target := layout.FindNewNodePosition(
			layout.Positions(flow.NodeDisplayCoords),
			box.Width(), box.Height(), opts.Margin, opts.Layout...,
		)
		moved := layout.Offset(selectedCoords, target.X-box.XMin, target.Y-box.YMin)
		for old, p := range moved {
			out.Coords[out.IDs[old]] = p
		}
	}

	// nodes without coordinates are placed one by one in free space
	placed := layout.Positions(flow.NodeDisplayCoords)
	for _, p := range out.Coords {
		placed = append(placed, p)
	}
	for _, tn := range out.Nodes {
		if _, ok := out.Coords[tn.ID]; ok {
			continue
		}
		p := layout.FindNewNodePosition(placed, opts.NodeWidth, opts.NodeHeight, opts.Margin, opts.Layout...)
		out.Coords[tn.ID] = p
		placed = append(placed, p)
	}
	return out, nil
}

// collectRefs lists every reference slot of n in visiting order, nil
// slots included.
func collectRefs(n domain.Node) []*string {
	var refs []*string
	n.RewriteRefs(func(ref *string) *string {
		refs = append(refs, ref)
		return ref
	})
	return refs
}

func withOptions(src *options) Option {
	return func(o *options) { *o = *src }
}

// AddTo inserts the clones and their positions into flow.
func (s SubgraphClone) AddTo(flow *domain.UserFlowConfig) {
	for _, n := range s.Nodes {
		Insert(flow, n, s.Coords[n.ID])
	}
}

// Insert adds a cloned node to flow at pos.
func Insert(flow *domain.UserFlowConfig, n TentativeNode, pos domain.Position) {
	switch v := n.Config.(type) {
	case domain.EntryPoint:
		flow.Entrypoints = append(flow.Entrypoints, domain.WrapEntryPoint(v))
	case domain.Block:
		flow.Blocks = append(flow.Blocks, domain.WrapBlock(v))
	}
	if flow.NodeDisplayCoords == nil {
		flow.NodeDisplayCoords = make(map[string]domain.Position)
	}
	flow.NodeDisplayCoords[n.ID] = pos
}
