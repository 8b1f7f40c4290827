package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/layout"
)

// ErrDuplicateID is returned by Build when two nodes share an ID.
var ErrDuplicateID = errors.New("duplicate node id")

// nodeBuilder is implemented by every typed node builder.
type nodeBuilder interface {
	build() (domain.Node, error)
}

type entry struct {
	id  string
	nb  nodeBuilder
	pos *domain.Position
}

// Builder manages the flow construction.
type Builder struct {
	entries []*entry
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) add(id string, nb nodeBuilder) *entry {
	e := &entry{id: id, nb: nb}
	b.entries = append(b.entries, e)
	return e
}

// At pins the canvas position of the node with the given ID. Nodes without a
// pinned position are placed automatically, in the order they were added.
func (b *Builder) At(id string, x, y float64) *Builder {
	for _, e := range b.entries {
		if e.id == id {
			e.pos = &domain.Position{X: x, Y: y}
		}
	}
	return b
}

// Build compiles the nodes into a flow.
func (b *Builder) Build() (domain.UserFlowConfig, error) {
	flow := domain.UserFlowConfig{
		Entrypoints:       []domain.EntryPointConfig{},
		Blocks:            []domain.BlockConfig{},
		NodeDisplayCoords: make(map[string]domain.Position),
	}

	seen := make(map[string]bool, len(b.entries))
	for _, e := range b.entries {
		if seen[e.id] {
			return domain.UserFlowConfig{}, fmt.Errorf("%w: %q", ErrDuplicateID, e.id)
		}
		seen[e.id] = true

		node, err := e.nb.build()
		if err != nil {
			return domain.UserFlowConfig{}, fmt.Errorf("failed to build node %q: %w", e.id, err)
		}
		switch n := node.(type) {
		case domain.EntryPoint:
			flow.Entrypoints = append(flow.Entrypoints, domain.WrapEntryPoint(n))
		case domain.Block:
			flow.Blocks = append(flow.Blocks, domain.WrapBlock(n))
		}
		if e.pos != nil {
			flow.NodeDisplayCoords[e.id] = *e.pos
		}
	}

	for _, e := range b.entries {
		if e.pos != nil {
			continue
		}
		existing := layout.Positions(flow.NodeDisplayCoords)
		flow.NodeDisplayCoords[e.id] = layout.FindNewNodePosition(
			existing, layout.DefaultNodeWidth, layout.DefaultNodeHeight, layout.DefaultMargin,
		)
	}
	return flow, nil
}

// MustBuild is like Build but panics on error. Meant for tests and
// package-level templates.
func (b *Builder) MustBuild() domain.UserFlowConfig {
	flow, err := b.Build()
	if err != nil {
		panic(err)
	}
	return flow
}
