// Package clone duplicates flow nodes with fresh identifiers.
package clone

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/idgen"
)

// TentativeNode is a cloned node not yet inserted into a flow.
type TentativeNode struct {
	Kind    domain.NodeKind
	TypeKey domain.NodeTypeKey
	ID      string
	Config  domain.Node
}

func (n TentativeNode) MarshalJSON() ([]byte, error) {
	var config any
	switch v := n.Config.(type) {
	case domain.EntryPoint:
		config = domain.WrapEntryPoint(v)
	case domain.Block:
		config = domain.WrapBlock(v)
	}
	return json.Marshal(struct {
		Kind    domain.NodeKind    `json:"kind"`
		TypeKey domain.NodeTypeKey `json:"type_key"`
		ID      string             `json:"id"`
		Config  any                `json:"config"`
	}{n.Kind, n.TypeKey, n.ID, config})
}

type options struct {
	exists func(id string) bool
}

// Option configures cloning.
type Option func(*options)

// WithExisting makes generated IDs and form names avoid those already used
// in flow.
func WithExisting(flow *domain.UserFlowConfig) Option {
	return func(o *options) {
		taken := make(map[string]struct{})
		for _, id := range flow.NodeIDs() {
			taken[id] = struct{}{}
		}
		for id := range flow.NodeDisplayCoords {
			taken[id] = struct{}{}
		}
		for _, b := range flow.Blocks {
			if f := b.Form(); f != nil {
				taken[f.FormName] = struct{}{}
			}
		}
		prev := o.exists
		o.exists = func(id string) bool {
			if _, ok := taken[id]; ok {
				return true
			}
			return prev(id)
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{exists: func(string) bool { return false }}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Entrypoint returns a deep copy of ep with a new ID and no outgoing link.
func Entrypoint(ep domain.EntryPointConfig, opts ...Option) (TentativeNode, error) {
	if ep.Variant == nil {
		return TentativeNode{}, fmt.Errorf("clone entrypoint: %w", domain.ErrUnknownVariant)
	}
	cp, err := ep.Copy()
	if err != nil {
		return TentativeNode{}, err
	}
	return finish(domain.KindEntrypoint, cp.Variant, newOptions(opts))
}

// Block returns a deep copy of b with a new ID and all outgoing links
// removed. Forms also get a new form name and new field and option IDs;
// branch conditions follow their options.
func Block(b domain.BlockConfig, opts ...Option) (TentativeNode, error) {
	if b.Variant == nil {
		return TentativeNode{}, fmt.Errorf("clone block: %w", domain.ErrUnknownVariant)
	}
	cp, err := b.Copy()
	if err != nil {
		return TentativeNode{}, err
	}
	o := newOptions(opts)
	if f, ok := cp.Variant.(*domain.FormBlock); ok {
		if err := regenerateForm(f, o); err != nil {
			return TentativeNode{}, err
		}
	}
	return finish(domain.KindBlock, cp.Variant, o)
}

func finish(kind domain.NodeKind, n domain.Node, o *options) (TentativeNode, error) {
	id, err := idgen.Unique(idgen.NodeGenerator(kind, n.TypeKey()), o.exists)
	if err != nil {
		return TentativeNode{}, err
	}
	n.SetNodeID(id)
	domain.ClearRefs(n)
	return TentativeNode{Kind: kind, TypeKey: n.TypeKey(), ID: id, Config: n}, nil
}

// regenerateForm renames the form and gives every field and option a new
// ID. A branch condition is rewritten through the option mapping of the
// switch field preceding its run, falling back to the mapping of the whole
// form; conditions matching no option are kept.
func regenerateForm(f *domain.FormBlock, o *options) error {
	name, err := idgen.Unique(idgen.FormName, o.exists)
	if err != nil {
		return err
	}
	f.FormName = name

	all := make(map[string]string)
	var walk func(members []domain.FormMemberConfig, prefix string) error
	walk = func(members []domain.FormMemberConfig, prefix string) error {
		var current map[string]string
		for i, m := range members {
			path := fmt.Sprintf("%s%d", prefix, i+1)
			if b := m.Branch(); b != nil {
				if cond := b.ConditionMatchValue; cond != nil {
					if id, ok := current[*cond]; ok {
						b.ConditionMatchValue = domain.Ref(id)
					} else if id, ok := all[*cond]; ok {
						b.ConditionMatchValue = domain.Ref(id)
					}
				}
				if err := walk(b.Members, path+"."); err != nil {
					return err
				}
				continue
			}
			current = nil
			field := m.Field()
			if field == nil {
				return fmt.Errorf("clone form member #%s: %w", path, domain.ErrUnknownVariant)
			}
			field.Base().ID = idgen.FieldID()
			if ss, ok := field.(*domain.SingleSelectField); ok {
				current = make(map[string]string, len(ss.Options))
				for i := range ss.Options {
					id := idgen.OptionID()
					current[ss.Options[i].ID] = id
					all[ss.Options[i].ID] = id
					ss.Options[i].ID = id
				}
			}
		}
		return nil
	}
	return walk(f.Members, "")
}
