package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"ngram/internal/config"

	"github.com/spf13/cobra"
)

// NewConfigCommand returns the "config" command with its subcommands.
func NewConfigCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the ngram config file",
	}
	cmd.AddCommand(newConfigInitCmd(env), newConfigShowCmd(env))
	return cmd
}

func newConfigInitCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := env.Store.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if path == env.Home.ConfigPath() {
				if err := env.Home.EnsureExists(); err != nil {
					return err
				}
			}
			if err := env.Store.Save(config.Default()); err != nil {
				return err
			}
			env.Logger.Info("config written", "path", path)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			cfg := env.Config
			if p.format == "json" {
				return p.json(cfg)
			}
			p.kv([][2]string{
				{"File", env.Store.Path()},
				{"Cutoff", strconv.FormatInt(int64(cfg.Cutoff), 10)},
				{"Block", strconv.FormatInt(cfg.Block, 10)},
				{"Workers", strconv.Itoa(cfg.Workers)},
				{"Unknown", cfg.Unknown},
				{"Log level", cfg.LogLevel},
				{"Log format", cfg.LogFormat},
			})
			return nil
		},
	}
	addFormatFlag(cmd)
	return cmd
}
