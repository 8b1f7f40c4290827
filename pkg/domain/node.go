package domain

// NodeKind separates the two families of flow graph nodes.
type NodeKind string

const (
	KindEntrypoint NodeKind = "entrypoint"
	KindBlock      NodeKind = "block"
)

// NodeTypeKey names a concrete node variant. It matches the variant key used
// in the wire format.
type NodeTypeKey string

const (
	TypeCommand        NodeTypeKey = "command"
	TypeCatchAll       NodeTypeKey = "catch_all"
	TypeRegex          NodeTypeKey = "regex"
	TypeContent        NodeTypeKey = "content"
	TypeHumanOperator  NodeTypeKey = "human_operator"
	TypeMenu           NodeTypeKey = "menu"
	TypeForm           NodeTypeKey = "form"
	TypeLanguageSelect NodeTypeKey = "language_select"
)

// DefaultStartCommandID is the entrypoint ID of the /start command every new
// bot is created with.
const DefaultStartCommandID = "default-start-command"

// PlaceholderChatID marks a chat selection the user has not made yet.
const PlaceholderChatID int64 = 0

// Node is implemented by every concrete entrypoint and block.
type Node interface {
	// NodeID returns the entrypoint or block ID.
	NodeID() string
	// SetNodeID replaces the entrypoint or block ID.
	SetNodeID(id string)
	// TypeKey returns the variant key.
	TypeKey() NodeTypeKey
	// RewriteRefs replaces every outgoing block reference r with fn(r).
	// A nil reference means "not linked".
	RewriteRefs(fn func(ref *string) *string)
}

// Refs lists the non-nil outgoing block references of n, in field order.
func Refs(n Node) []string {
	var out []string
	n.RewriteRefs(func(ref *string) *string {
		if ref != nil {
			out = append(out, *ref)
		}
		return ref
	})
	return out
}

// ClearRefs unlinks every outgoing reference of n.
func ClearRefs(n Node) {
	n.RewriteRefs(func(*string) *string { return nil })
}

// Ref returns a reference to id.
func Ref(id string) *string {
	return &id
}

func rewrite(ref **string, fn func(*string) *string) {
	*ref = fn(*ref)
}
