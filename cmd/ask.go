package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/PocketDoc/internal/app"
	"github.com/Rorical/PocketDoc/internal/core"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and exit",
	Long: `Run a single question through the assistant without the interactive
interface and print the answer. Use --online to ask the remote model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := stderrLogger()

		provider, err := app.NewProvider(cfg, logger)
		if err != nil {
			return err
		}
		local := app.NewLocal(cfg, logger)
		defer local.Close()

		service := core.NewChatService(core.Deps{
			Metrics:   provider,
			Generator: local,
			Remote:    app.NewRemote(cfg, logger),
			Logger:    logger,
			Online:    flagOnline,
		}, nil)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		service.Handle(ctx, strings.Join(args, " "))

		turns := service.Turns()
		if len(turns) == 0 {
			return errors.New("no answer produced")
		}
		fmt.Fprintln(cmd.OutOrStdout(), turns[0].Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
