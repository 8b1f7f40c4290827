package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/validation"
)

func TestApply_LinksUnusedStartCommand(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	tmpl := ContentOnly(domain.Text("hi"), "content")

	out, err := Apply(flow, tmpl)
	require.NoError(t, err)

	start, ok := out.Entrypoint(domain.DefaultStartCommandID)
	require.True(t, ok)
	assert.Equal(t, tmpl.EntryBlockID, *start.(*domain.CommandEntryPoint).NextBlockID)
	assert.Len(t, out.Entrypoints, 1, "custom command is not needed")
	assert.Equal(t, domain.Position{X: 0, Y: 130}, out.NodeDisplayCoords[tmpl.EntryBlockID])

	// input flow is not modified
	orig, _ := flow.Entrypoint(domain.DefaultStartCommandID)
	assert.Nil(t, orig.(*domain.CommandEntryPoint).NextBlockID)
}

func TestApply_AddsCustomCommandAndShifts(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	flow.Entrypoints[0].Command().NextBlockID = domain.Ref("existing")
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(&domain.ContentBlock{ID: "existing"}))
	flow.NodeDisplayCoords["existing"] = domain.Position{X: 300, Y: 100}

	tmpl := ContentOnly(domain.Text("hi"), "content")
	out, err := Apply(flow, tmpl)
	require.NoError(t, err)

	require.Len(t, out.Entrypoints, 2)
	custom := out.Entrypoints[1].Command()
	require.NotNil(t, custom)
	assert.Equal(t, "content", custom.Command)
	assert.Equal(t, tmpl.EntryBlockID, *custom.NextBlockID)

	// existing box x: 0..550; template box x: 0..250, overlapping in y.
	// right shift 550 vs left shift 250: left wins, -250-30.
	assert.Equal(t, domain.Position{X: -280, Y: 0}, out.NodeDisplayCoords[custom.ID])
	assert.Equal(t, domain.Position{X: -280, Y: 130}, out.NodeDisplayCoords[tmpl.EntryBlockID])
	assert.Equal(t, domain.Position{X: 300, Y: 100}, out.NodeDisplayCoords["existing"])
}

func TestApply_NoShiftWithoutVerticalOverlap(t *testing.T) {
	flow := domain.NewUserFlowConfig()
	flow.Entrypoints[0].Command().NextBlockID = domain.Ref("existing")
	flow.NodeDisplayCoords[domain.DefaultStartCommandID] = domain.Position{X: 0, Y: 1000}

	tmpl := ContentOnly(domain.Text("hi"), "content")
	out, err := Apply(flow, tmpl)
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 0, Y: 130}, out.NodeDisplayCoords[tmpl.EntryBlockID])
}

func TestApply_StartCommandMissing(t *testing.T) {
	_, err := Apply(domain.UserFlowConfig{}, ContentOnly(domain.Text("hi"), "content"))
	assert.ErrorIs(t, err, ErrStartCommandNotFound)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"content", "survey"}, r.Names())

	a, err := r.Get("content")
	require.NoError(t, err)
	b, err := r.Get("content")
	require.NoError(t, err)
	assert.NotEqual(t, a.EntryBlockID, b.EntryBlockID, "each Get builds fresh IDs")

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	r.Register("custom", func() Template { return Template{EntryBlockID: "x"} })
	assert.Equal(t, []string{"content", "custom", "survey"}, r.Names())
}

func TestSurvey(t *testing.T) {
	tmpl := Survey("survey")
	require.Len(t, tmpl.Config.Blocks, 2)
	assert.True(t, tmpl.Config.HasNode(tmpl.EntryBlockID))

	out, err := Apply(domain.NewUserFlowConfig(), tmpl)
	require.NoError(t, err)
	report := validation.ValidateFlow(&out, nil, nil)
	assert.True(t, report.OK(), "%v", report.Err())
}
