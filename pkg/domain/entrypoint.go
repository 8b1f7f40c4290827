package domain

import "encoding/json"

// EntryPoint is a trigger that starts flow execution at a block.
// Implemented by *CommandEntryPoint, *CatchAllEntryPoint and *RegexMatchEntryPoint.
type EntryPoint interface {
	Node
	entrypoint()
}

// CommandEntryPoint catches Telegram /commands.
type CommandEntryPoint struct {
	ID               string  `json:"entrypoint_id"`
	Command          string  `json:"command"`
	NextBlockID      *string `json:"next_block_id"`
	Scope            string  `json:"scope,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	Extra            Extra   `json:"-"`
}

// CatchAllEntryPoint catches every user message.
type CatchAllEntryPoint struct {
	ID          string  `json:"entrypoint_id"`
	NextBlockID *string `json:"next_block_id"`
	Extra       Extra   `json:"-"`
}

// RegexMatchEntryPoint catches user messages matching a regular expression.
type RegexMatchEntryPoint struct {
	ID          string  `json:"entrypoint_id"`
	Regex       string  `json:"regex"`
	NextBlockID *string `json:"next_block_id"`
	Extra       Extra   `json:"-"`
}

func (*CommandEntryPoint) entrypoint()    {}
func (*CatchAllEntryPoint) entrypoint()   {}
func (*RegexMatchEntryPoint) entrypoint() {}

func (e *CommandEntryPoint) NodeID() string         { return e.ID }
func (e *CatchAllEntryPoint) NodeID() string        { return e.ID }
func (e *RegexMatchEntryPoint) NodeID() string      { return e.ID }
func (e *CommandEntryPoint) SetNodeID(id string)    { e.ID = id }
func (e *CatchAllEntryPoint) SetNodeID(id string)   { e.ID = id }
func (e *RegexMatchEntryPoint) SetNodeID(id string) { e.ID = id }

func (*CommandEntryPoint) TypeKey() NodeTypeKey    { return TypeCommand }
func (*CatchAllEntryPoint) TypeKey() NodeTypeKey   { return TypeCatchAll }
func (*RegexMatchEntryPoint) TypeKey() NodeTypeKey { return TypeRegex }

func (e *CommandEntryPoint) RewriteRefs(fn func(*string) *string) {
	rewrite(&e.NextBlockID, fn)
}

func (e *CatchAllEntryPoint) RewriteRefs(fn func(*string) *string) {
	rewrite(&e.NextBlockID, fn)
}

func (e *RegexMatchEntryPoint) RewriteRefs(fn func(*string) *string) {
	rewrite(&e.NextBlockID, fn)
}

func (e CommandEntryPoint) MarshalJSON() ([]byte, error) {
	type plain CommandEntryPoint
	return encodeOpen(plain(e), e.Extra)
}

func (e *CommandEntryPoint) UnmarshalJSON(data []byte) error {
	type plain CommandEntryPoint
	extra, err := decodeOpen(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (e CatchAllEntryPoint) MarshalJSON() ([]byte, error) {
	type plain CatchAllEntryPoint
	return encodeOpen(plain(e), e.Extra)
}

func (e *CatchAllEntryPoint) UnmarshalJSON(data []byte) error {
	type plain CatchAllEntryPoint
	extra, err := decodeOpen(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (e RegexMatchEntryPoint) MarshalJSON() ([]byte, error) {
	type plain RegexMatchEntryPoint
	return encodeOpen(plain(e), e.Extra)
}

func (e *RegexMatchEntryPoint) UnmarshalJSON(data []byte) error {
	type plain RegexMatchEntryPoint
	extra, err := decodeOpen(data, (*plain)(e))
	e.Extra = extra
	return err
}

var entrypointDecoders = map[string]variantDecoder[EntryPoint]{
	string(TypeCommand):  decodeInto(func(e *CommandEntryPoint) EntryPoint { return e }),
	string(TypeCatchAll): decodeInto(func(e *CatchAllEntryPoint) EntryPoint { return e }),
	string(TypeRegex):    decodeInto(func(e *RegexMatchEntryPoint) EntryPoint { return e }),
}

// EntryPointConfig is the wire wrapper of an EntryPoint. Variant is nil when
// the config holds a variant this model does not recognize.
type EntryPointConfig struct {
	Variant EntryPoint
	Extra   Extra
}

// WrapEntryPoint returns the config wrapper for ep.
func WrapEntryPoint(ep EntryPoint) EntryPointConfig {
	return EntryPointConfig{Variant: ep}
}

// ID returns the entrypoint ID or ErrUnknownVariant.
func (c EntryPointConfig) ID() (string, error) {
	if c.Variant == nil {
		return "", ErrUnknownVariant
	}
	return c.Variant.NodeID(), nil
}

// Command returns the command variant, or nil.
func (c EntryPointConfig) Command() *CommandEntryPoint {
	cmd, _ := c.Variant.(*CommandEntryPoint)
	return cmd
}

func (c EntryPointConfig) MarshalJSON() ([]byte, error) {
	if c.Variant == nil {
		return encodeVariant("", nil, c.Extra)
	}
	return encodeVariant(string(c.Variant.TypeKey()), c.Variant, c.Extra)
}

func (c *EntryPointConfig) UnmarshalJSON(data []byte) error {
	v, extra, err := decodeVariant(data, entrypointDecoders)
	if err != nil {
		return err
	}
	c.Variant, c.Extra = v, extra
	return nil
}

// Copy returns a deep copy of the config.
func (c EntryPointConfig) Copy() (EntryPointConfig, error) {
	return deepCopy(c)
}

var _ json.Marshaler = EntryPointConfig{}
