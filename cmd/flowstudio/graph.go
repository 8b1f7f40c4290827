package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the flow. Nodes with errors are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		selected, _ := cmd.Flags().GetString("select")
		lang, _ := cmd.Flags().GetString("label-lang")
		return cli.Graph(a.studio, args[0], selected, lang, stdio())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("select", "", "Node ID to highlight")
	graphCmd.Flags().String("label-lang", "", "Language of localized button labels")
}
