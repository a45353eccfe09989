package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/gallery/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gallery: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	configPath string
	prefsPath  string
	poll       int
}

func (f *rootFlags) options() app.Options {
	return app.Options{ConfigPath: f.configPath, PrefsPath: f.prefsPath, PollEvery: f.poll}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "gallery",
		Short:         "Browse and upload images from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path (default ~/.config/gallery/config.toml)")
	cmd.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "prefs file path (default ~/.config/gallery/prefs.toml)")
	cmd.Flags().IntVar(&flags.poll, "poll", 0, "revalidate interval in seconds (default 2)")

	cmd.AddCommand(
		newListCommand(flags),
		newUploadCommand(flags),
		newDevserverCommand(),
		newLogsCommand(flags),
	)
	return cmd
}
