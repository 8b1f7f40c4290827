package domain

// MenuBlock shows a menu of buttons, possibly nested.
type MenuBlock struct {
	ID    string `json:"block_id"`
	Menu  Menu   `json:"menu"`
	Extra Extra  `json:"-"`
}

type Menu struct {
	Text   LocalizableText `json:"text"`
	Markup string          `json:"markup,omitempty"`
	Items  []MenuItem      `json:"items"`
	Config MenuConfig      `json:"config"`
	Extra  Extra           `json:"-"`
}

// MenuItem is a menu button. An item without a submenu must lead somewhere:
// to a block or to a link.
type MenuItem struct {
	Label       LocalizableText `json:"label"`
	Submenu     *Menu           `json:"submenu,omitempty"`
	NextBlockID *string         `json:"next_block_id,omitempty"`
	LinkURL     *string         `json:"link_url,omitempty"`
	Extra       Extra           `json:"-"`
}

type MenuConfig struct {
	Mechanism            string           `json:"mechanism"`
	BackLabel            *LocalizableText `json:"back_label"`
	LockAfterTermination bool             `json:"lock_after_termination"`
	Extra                Extra            `json:"-"`
}

// RewriteRefs visits item references at every submenu depth.
func (b *MenuBlock) RewriteRefs(fn func(*string) *string) {
	b.Menu.rewriteRefs(fn)
}

func (m *Menu) rewriteRefs(fn func(*string) *string) {
	for i := range m.Items {
		item := &m.Items[i]
		if item.Submenu != nil {
			item.Submenu.rewriteRefs(fn)
		}
		rewrite(&item.NextBlockID, fn)
	}
}

// Walk calls fn for every item of m and its submenus, depth first.
func (m *Menu) Walk(fn func(item *MenuItem)) {
	for i := range m.Items {
		fn(&m.Items[i])
		if m.Items[i].Submenu != nil {
			m.Items[i].Submenu.Walk(fn)
		}
	}
}

func (b MenuBlock) MarshalJSON() ([]byte, error) {
	type plain MenuBlock
	return encodeOpen(plain(b), b.Extra)
}

func (b *MenuBlock) UnmarshalJSON(data []byte) error {
	type plain MenuBlock
	extra, err := decodeOpen(data, (*plain)(b))
	b.Extra = extra
	return err
}

func (m Menu) MarshalJSON() ([]byte, error) {
	type plain Menu
	return encodeOpen(plain(m), m.Extra)
}

func (m *Menu) UnmarshalJSON(data []byte) error {
	type plain Menu
	extra, err := decodeOpen(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (i MenuItem) MarshalJSON() ([]byte, error) {
	type plain MenuItem
	return encodeOpen(plain(i), i.Extra)
}

func (i *MenuItem) UnmarshalJSON(data []byte) error {
	type plain MenuItem
	extra, err := decodeOpen(data, (*plain)(i))
	i.Extra = extra
	return err
}

func (c MenuConfig) MarshalJSON() ([]byte, error) {
	type plain MenuConfig
	return encodeOpen(plain(c), c.Extra)
}

func (c *MenuConfig) UnmarshalJSON(data []byte) error {
	type plain MenuConfig
	extra, err := decodeOpen(data, (*plain)(c))
	c.Extra = extra
	return err
}
