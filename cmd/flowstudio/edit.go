package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio/internal/cli"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <file> <node-id>...",
	Short: "Duplicate nodes of a bot config",
	Long: `Clones the named nodes with fresh IDs. Links among the cloned nodes follow the
clones; links leaving the selection are cleared. The old -> new ID mapping goes to stderr.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		write, _ := cmd.Flags().GetBool("write")
		return cli.Clone(a.studio, args[0], args[1:], write, stdio())
	},
}

var placeCmd = &cobra.Command{
	Use:   "place <file>",
	Short: "Print a free canvas position for a new node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return cli.Place(a.studio, args[0], stdio())
	},
}

var applyTemplateCmd = &cobra.Command{
	Use:   "apply-template <file> <name>",
	Short: "Merge a template into a bot config",
	Long: `Merges the named template into the flow. The /start command is linked to the
template when it is free; otherwise the template gets its own command and is moved
clear of the existing nodes. Run "flowstudio templates" for the names.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		write, _ := cmd.Flags().GetBool("write")
		return cli.ApplyTemplate(a.studio, args[0], args[1], write, stdio())
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		cli.Templates(a.studio, stdio())
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune <file>",
	Short: "Drop dangling links and coordinates of removed nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")
		return cli.Prune(args[0], write, stdio())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{cloneCmd, applyTemplateCmd, pruneCmd} {
		cmd.Flags().Bool("write", false, "Write the result back to the file instead of stdout")
	}
	rootCmd.AddCommand(cloneCmd, placeCmd, applyTemplateCmd, templatesCmd, pruneCmd)
}
