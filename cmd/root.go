package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Rorical/PocketDoc/internal/app"
	"github.com/Rorical/PocketDoc/internal/config"
	"github.com/Rorical/PocketDoc/internal/logging"
)

var (
	flagHome     string
	flagOnline   bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pocketdoc",
	Short: "A smartphone health assistant for the terminal",
	Long: `PocketDoc answers questions about your phone. Type 'sysinfo' for a device
health report, ask for advice from the local model, or switch to online mode
(ctrl+o) to ask a remote model.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "configuration directory (default $POCKETDOC_HOME or ~/.pocketdoc)")
	rootCmd.PersistentFlags().BoolVar(&flagOnline, "online", false, "start in online mode")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(profileCmd)
}

// runChat runs the interactive chat until the user quits.
func runChat() error {
	application, err := app.NewApplication(app.Options{
		Home:     flagHome,
		Online:   flagOnline,
		LogLevel: flagLogLevel,
	})
	if err != nil {
		return err
	}
	defer application.Stop()

	return application.Start()
}

func loadConfig() (*config.Config, error) {
	return config.Load(flagHome)
}

// stderrLogger is used by one-shot commands, which keep stdout for results.
func stderrLogger() zerolog.Logger {
	level := flagLogLevel
	if level == "" {
		level = "warn"
	}
	return logging.New(os.Stderr, level)
}
