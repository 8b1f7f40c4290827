package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/domain"
)

func TestNodeID(t *testing.T) {
	id := NodeID(domain.KindBlock, domain.TypeMenu)
	require.True(t, strings.HasPrefix(id, "block-menu-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "block-menu-"))
	assert.NoError(t, err)

	assert.NotEqual(t, id, NodeID(domain.KindBlock, domain.TypeMenu))
}

func TestFieldIDAndFormName(t *testing.T) {
	assert.True(t, strings.HasPrefix(FieldID(), "form_field_"))
	assert.True(t, strings.HasPrefix(FormName(), "form-"))
	assert.NotEqual(t, FormName(), FormName())
}

func TestOptionID(t *testing.T) {
	id := OptionID()
	_, err := xid.FromString(id)
	assert.NoError(t, err)
	assert.Len(t, id, 20)
}

func TestUnique(t *testing.T) {
	ids := []string{"a", "b", "c"}
	i := 0
	gen := func() string { id := ids[i]; i++; return id }
	taken := map[string]bool{"a": true, "b": true}

	id, err := Unique(gen, func(id string) bool { return taken[id] })
	require.NoError(t, err)
	assert.Equal(t, "c", id)
}

func TestUnique_Exhausted(t *testing.T) {
	calls := 0
	_, err := Unique(func() string { calls++; return "x" }, func(string) bool { return true })
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, MaxAttempts, calls)
}

func TestNodeGenerator(t *testing.T) {
	gen := NodeGenerator(domain.KindEntrypoint, domain.TypeCommand)
	assert.True(t, strings.HasPrefix(gen(), "entrypoint-command-"))
}
