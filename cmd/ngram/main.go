// Command ngram builds token dictionaries from text corpora and encodes
// corpora into compact token streams.
//
// Logging:
//   - Base logger is created once per invocation from --log-level/--log-format
//     (or the config file) and written to stderr
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
//   - Components scope loggers with their own attributes
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ngram/cmd/ngram/cli"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	env := &cli.Env{}

	rootCmd := &cobra.Command{
		Use:          "ngram",
		Short:        "Token dictionaries and token streams for n-gram corpora",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.Load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.Finish(cmd)
		},
	}

	rootCmd.PersistentFlags().String("home", "", "home directory (default: platform config dir)")
	rootCmd.PersistentFlags().String("config", "", "config file (default: <home>/config.json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, or error (default from config, info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (default from config, text)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(
		cli.NewCountCommand(env),
		cli.NewCompressCommand(env),
		cli.NewEncodeCommand(env),
		cli.NewDecodeCommand(env),
		cli.NewSplitCommand(env),
		cli.NewConfigCommand(env),
		versionCmd,
	)
	return rootCmd
}
