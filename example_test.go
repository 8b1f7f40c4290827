package flowstudio_test

import (
	"fmt"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/pkg/domain"
)

// ExampleStudio_ValidateFlow shows how validation problems are reported per node.
func ExampleStudio_ValidateFlow() {
	studio := flowstudio.New()

	flow := domain.NewUserFlowConfig()
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(&domain.ContentBlock{
		ID:       "greeting",
		Contents: []domain.Content{{Text: &domain.ContentText{Text: domain.Text("")}}},
	}))

	report := studio.ValidateFlow(&flow, "en")
	for _, n := range report.Failed() {
		fmt.Println(n.ID, n.Result.Errors)
	}
	// Output:
	// greeting [Text #1: not filled in]
}
