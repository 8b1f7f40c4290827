package locale

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultCatalog_Languages(t *testing.T) {
	assert.ElementsMatch(t, []string{"en", "ru"}, Default().Languages())
}

func TestLocalize(t *testing.T) {
	data := map[string]any{"Name": "Menu text"}

	assert.Equal(t, "Menu text: not filled in", English().Localize(TextEmpty, data))
	assert.Equal(t, "Menu text: не заполнен", For("ru").Localize(TextEmpty, data))
}

func TestLocalize_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "The menu has no buttons", For("de").Localize(MenuNoItems, nil))
}

func TestLocalize_UnknownIDReturnsID(t *testing.T) {
	assert.Equal(t, "no_such_message", English().Localize("no_such_message", nil))
}

func TestOrEnglish(t *testing.T) {
	assert.NotNil(t, OrEnglish(nil))
	ru := For("ru")
	assert.Equal(t, ru, OrEnglish(ru))
}

func TestNewCatalog_FromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"active.en.yaml": {Data: []byte("hello: \"Hello, {{.Name}}\"\n")},
	}
	c, err := NewCatalog(fsys)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Bob", c.Localizer("en").Localize("hello", map[string]any{"Name": "Bob"}))
}

func TestNewCatalog_BrokenFile(t *testing.T) {
	fsys := fstest.MapFS{
		"active.en.yaml": {Data: []byte("hello: [unclosed\n")},
	}
	_, err := NewCatalog(fsys)
	assert.Error(t, err)
}

// Every message ID must be translated in every catalog language.
func TestCatalogsHaveSameKeys(t *testing.T) {
	sub, err := fs.Sub(catalogFS, "catalog")
	require.NoError(t, err)

	load := func(name string) map[string]string {
		data, err := fs.ReadFile(sub, name)
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, yaml.Unmarshal(data, &m))
		return m
	}
	en, ru := load("active.en.yaml"), load("active.ru.yaml")

	for key := range en {
		assert.Contains(t, ru, key)
	}
	for key := range ru {
		assert.Contains(t, en, key)
	}
	for _, id := range []string{
		TextEmpty, MenuItemNoTarget, FormBranchesWithoutSwitch, FlowUnknownVariant,
		FormMessagePrefix + "form_start", FormMessagePrefix + "unsupported_command",
	} {
		assert.Contains(t, en, id)
	}
}
