package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowstudio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowstudio version %s\n", strings.TrimSpace(flowstudio.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
