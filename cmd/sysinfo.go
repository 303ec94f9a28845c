package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Rorical/PocketDoc/internal/app"
	"github.com/Rorical/PocketDoc/internal/device"
	"github.com/Rorical/PocketDoc/internal/diagnostics"
)

var sysinfoRaw bool

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print the device health report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		provider, err := app.NewProvider(cfg, stderrLogger())
		if err != nil {
			return err
		}
		snapshot, err := device.Collect(cmd.Context(), provider)
		if err != nil {
			return fmt.Errorf("collect device status: %w", err)
		}

		report := diagnostics.NewBuilder().Build(snapshot)
		if sysinfoRaw {
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return err
		}
		rendered, err := renderer.Render(report)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	sysinfoCmd.Flags().BoolVar(&sysinfoRaw, "raw", false, "print the report without markdown rendering")
	rootCmd.AddCommand(sysinfoCmd)
}
