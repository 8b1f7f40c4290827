package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/flowstudio/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a bot config for errors",
	Long: `Validates every entrypoint and block of the bot config in <file> ("-" reads stdin)
and prints the errors per node. Exits with status 1 when the flow has errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := fileCommand(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		format, _ := cmd.Flags().GetString("format")
		f, err := cli.ParseReportFormat(format)
		if err != nil {
			return err
		}
		opts := cli.ValidateOptions{Path: args[0], UILanguage: a.cfg.UILanguage, Format: f}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return cli.ValidateWatch(ctx, a.studio, opts, stdio(), a.logger)
		}
		return cli.Validate(a.studio, opts, stdio())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("format", "text", "Report format: text, markdown or json")
	validateCmd.Flags().BoolP("watch", "w", false, "Validate again whenever the file changes")
}
