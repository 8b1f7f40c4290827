package domain

// Block is one step of bot behaviour. Implemented by *ContentBlock,
// *HumanOperatorBlock, *MenuBlock, *FormBlock and *LanguageSelectBlock.
type Block interface {
	Node
	block()
}

// ContentBlock sends static content in one or several messages and then
// continues to the next block.
type ContentBlock struct {
	ID          string    `json:"block_id"`
	Contents    []Content `json:"contents"`
	NextBlockID *string   `json:"next_block_id"`
	Extra       Extra     `json:"-"`
}

// Content is one message of a content block.
type Content struct {
	Text        *ContentText `json:"text"`
	Attachments []Attachment `json:"attachments"`
	Extra       Extra        `json:"-"`
}

// ContentText is the text payload of a message.
type ContentText struct {
	Text   LocalizableText `json:"text"`
	Markup string          `json:"markup"`
	Extra  Extra           `json:"-"`
}

// Attachment is a media attachment of a message.
type Attachment struct {
	Image *string `json:"image"`
	Extra Extra   `json:"-"`
}

// HumanOperatorBlock is a terminal block handing the conversation over to
// a human operator in an admin chat.
type HumanOperatorBlock struct {
	ID                    string                `json:"block_id"`
	CatchAll              bool                  `json:"catch_all"`
	FeedbackHandlerConfig FeedbackHandlerConfig `json:"feedback_handler_config"`
	Extra                 Extra                 `json:"-"`
}

type FeedbackHandlerConfig struct {
	AdminChatID             int64           `json:"admin_chat_id"`
	ForumTopicPerUser       bool            `json:"forum_topic_per_user"`
	AnonimyzeUsers          bool            `json:"anonimyze_users"`
	MaxMessagesPerMinute    int             `json:"max_messages_per_minute"`
	MessagesToUser          MessagesToUser  `json:"messages_to_user"`
	MessagesToAdmin         MessagesToAdmin `json:"messages_to_admin"`
	HashtagsInAdminChat     bool            `json:"hashtags_in_admin_chat"`
	UnansweredHashtag       *string         `json:"unanswered_hashtag"`
	HashtagMessageRarerThan *string         `json:"hashtag_message_rarer_than"`
	MessageLogToAdminChat   bool            `json:"message_log_to_admin_chat"`
	Extra                   Extra           `json:"-"`
}

type MessagesToUser struct {
	ForwardedToAdminOK LocalizableText `json:"forwarded_to_admin_ok"`
	Throttling         LocalizableText `json:"throttling"`
	Extra              Extra           `json:"-"`
}

type MessagesToAdmin struct {
	CopiedToUserOK      string `json:"copied_to_user_ok"`
	DeletedMessageOK    string `json:"deleted_message_ok"`
	CanNotDeleteMessage string `json:"can_not_delete_message"`
	Extra               Extra  `json:"-"`
}

// LanguageSelectBlock lets the user pick the bot language. If present, every
// text in the flow must be localized to all supported languages. At most one
// such block is permitted per flow.
type LanguageSelectBlock struct {
	ID                          string                      `json:"block_id"`
	MenuConfig                  LanguageSelectionMenuConfig `json:"menu_config"`
	SupportedLanguages          []string                    `json:"supported_languages"`
	DefaultLanguage             string                      `json:"default_language"`
	LanguageSelectedNextBlockID *string                     `json:"language_selected_next_block_id"`
	NextBlockID                 *string                     `json:"next_block_id,omitempty"`
	Extra                       Extra                       `json:"-"`
}

type LanguageSelectionMenuConfig struct {
	// the misspelled key is part of the stored schema
	Prompt       LocalizableText `json:"propmt"`
	IsBlocking   bool            `json:"is_blocking"`
	EmojiButtons bool            `json:"emoji_buttons"`
	Extra        Extra           `json:"-"`
}

func (*ContentBlock) block()        {}
func (*HumanOperatorBlock) block()  {}
func (*MenuBlock) block()           {}
func (*FormBlock) block()           {}
func (*LanguageSelectBlock) block() {}

func (b *ContentBlock) NodeID() string        { return b.ID }
func (b *HumanOperatorBlock) NodeID() string  { return b.ID }
func (b *MenuBlock) NodeID() string           { return b.ID }
func (b *FormBlock) NodeID() string           { return b.ID }
func (b *LanguageSelectBlock) NodeID() string { return b.ID }

func (b *ContentBlock) SetNodeID(id string)        { b.ID = id }
func (b *HumanOperatorBlock) SetNodeID(id string)  { b.ID = id }
func (b *MenuBlock) SetNodeID(id string)           { b.ID = id }
func (b *FormBlock) SetNodeID(id string)           { b.ID = id }
func (b *LanguageSelectBlock) SetNodeID(id string) { b.ID = id }

func (*ContentBlock) TypeKey() NodeTypeKey        { return TypeContent }
func (*HumanOperatorBlock) TypeKey() NodeTypeKey  { return TypeHumanOperator }
func (*MenuBlock) TypeKey() NodeTypeKey           { return TypeMenu }
func (*FormBlock) TypeKey() NodeTypeKey           { return TypeForm }
func (*LanguageSelectBlock) TypeKey() NodeTypeKey { return TypeLanguageSelect }

func (b *ContentBlock) RewriteRefs(fn func(*string) *string) {
	rewrite(&b.NextBlockID, fn)
}

// RewriteRefs is a no-op: the human operator block is terminal.
func (b *HumanOperatorBlock) RewriteRefs(func(*string) *string) {}

func (b *LanguageSelectBlock) RewriteRefs(fn func(*string) *string) {
	rewrite(&b.LanguageSelectedNextBlockID, fn)
	rewrite(&b.NextBlockID, fn)
}

var blockDecoders = map[string]variantDecoder[Block]{
	string(TypeContent):        decodeInto(func(b *ContentBlock) Block { return b }),
	string(TypeHumanOperator):  decodeInto(func(b *HumanOperatorBlock) Block { return b }),
	string(TypeMenu):           decodeInto(func(b *MenuBlock) Block { return b }),
	string(TypeForm):           decodeInto(func(b *FormBlock) Block { return b }),
	string(TypeLanguageSelect): decodeInto(func(b *LanguageSelectBlock) Block { return b }),
}

// BlockConfig is the wire wrapper of a Block. Variant is nil when the config
// holds a variant this model does not recognize.
type BlockConfig struct {
	Variant Block
	Extra   Extra
}

// WrapBlock returns the config wrapper for b.
func WrapBlock(b Block) BlockConfig {
	return BlockConfig{Variant: b}
}

// ID returns the block ID or ErrUnknownVariant.
func (c BlockConfig) ID() (string, error) {
	if c.Variant == nil {
		return "", ErrUnknownVariant
	}
	return c.Variant.NodeID(), nil
}

// Form returns the form variant, or nil.
func (c BlockConfig) Form() *FormBlock {
	f, _ := c.Variant.(*FormBlock)
	return f
}

// LanguageSelect returns the language select variant, or nil.
func (c BlockConfig) LanguageSelect() *LanguageSelectBlock {
	ls, _ := c.Variant.(*LanguageSelectBlock)
	return ls
}

func (c BlockConfig) MarshalJSON() ([]byte, error) {
	if c.Variant == nil {
		return encodeVariant("", nil, c.Extra)
	}
	return encodeVariant(string(c.Variant.TypeKey()), c.Variant, c.Extra)
}

func (c *BlockConfig) UnmarshalJSON(data []byte) error {
	v, extra, err := decodeVariant(data, blockDecoders)
	if err != nil {
		return err
	}
	c.Variant, c.Extra = v, extra
	return nil
}

// Copy returns a deep copy of the config.
func (c BlockConfig) Copy() (BlockConfig, error) {
	return deepCopy(c)
}

func (b ContentBlock) MarshalJSON() ([]byte, error) {
	type plain ContentBlock
	return encodeOpen(plain(b), b.Extra)
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	type plain ContentBlock
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (c Content) MarshalJSON() ([]byte, error) {
	type plain Content
	return encodeOpen(plain(c), c.Extra)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	type plain Content
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (t ContentText) MarshalJSON() ([]byte, error) {
	type plain ContentText
	return encodeOpen(plain(t), t.Extra)
}

func (t *ContentText) UnmarshalJSON(data []byte) error {
	type plain ContentText
	extra, err := decodeOpen(data, (*plain)(t))
	t.Extra = extra
	return err
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	type plain Attachment
	return encodeOpen(plain(a), a.Extra)
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	type plain Attachment
	extra, err := decodeOpen(data, (*plain)(a))
	a.Extra = extra
	return err
}

func (b HumanOperatorBlock) MarshalJSON() ([]byte, error) {
	type plain HumanOperatorBlock
	return encodeOpen(plain(b), b.Extra)
}

func (b *HumanOperatorBlock) UnmarshalJSON(data []byte) error {
	type plain HumanOperatorBlock
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (c FeedbackHandlerConfig) MarshalJSON() ([]byte, error) {
	type plain FeedbackHandlerConfig
	return encodeOpen(plain(c), c.Extra)
}

func (c *FeedbackHandlerConfig) UnmarshalJSON(data []byte) error {
	type plain FeedbackHandlerConfig
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (m MessagesToUser) MarshalJSON() ([]byte, error) {
	type plain MessagesToUser
	return encodeOpen(plain(m), m.Extra)
}

func (m *MessagesToUser) UnmarshalJSON(data []byte) error {
	type plain MessagesToUser
	extra, err := decodeOpen(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (m MessagesToAdmin) MarshalJSON() ([]byte, error) {
	type plain MessagesToAdmin
	return encodeOpen(plain(m), m.Extra)
}

func (m *MessagesToAdmin) UnmarshalJSON(data []byte) error {
	type plain MessagesToAdmin
	extra, err := decodeOpen(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (b LanguageSelectBlock) MarshalJSON() ([]byte, error) {
	type plain LanguageSelectBlock
	return encodeOpen(plain(b), b.Extra)
}

func (b *LanguageSelectBlock) UnmarshalJSON(data []byte) error {
	type plain LanguageSelectBlock
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (c LanguageSelectionMenuConfig) MarshalJSON() ([]byte, error) {
	type plain LanguageSelectionMenuConfig
	return encodeOpen(plain(c), c.Extra)
}

func (c *LanguageSelectionMenuConfig) UnmarshalJSON(data []byte) error {
	type plain LanguageSelectionMenuConfig
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}
