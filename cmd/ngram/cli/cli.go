// Package cli implements the ngram subcommands. Every command reads its
// settings from an Env that the root command resolves before it runs.
package cli

import (
	"fmt"
	"log/slog"

	"ngram/internal/config"
	configfile "ngram/internal/config/file"
	"ngram/internal/home"
	"ngram/internal/logging"
	"ngram/internal/sysmetrics"

	"github.com/spf13/cobra"
)

// Env is the per-invocation state shared by all subcommands.
type Env struct {
	Home   home.Dir
	Store  *configfile.Store
	Config config.Config
	Logger *slog.Logger

	started sysmetrics.Sample
}

// Load resolves the home directory, reads the config file and applies the
// root's persistent flags. The logger writes to cmd's error stream.
func (e *Env) Load(cmd *cobra.Command) error {
	homeFlag, _ := cmd.Flags().GetString("home")
	configFlag, _ := cmd.Flags().GetString("config")

	hd, err := home.Resolve(homeFlag)
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	path := configFlag
	if path == "" {
		path = hd.ConfigPath()
	}
	store := configfile.NewStore(path)

	cfg, err := store.Resolve()
	if err != nil {
		return err
	}
	overrideString(cmd, "log-level", &cfg.LogLevel)
	overrideString(cmd, "log-format", &cfg.LogFormat)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	if err != nil {
		return err
	}

	e.Home = hd
	e.Store = store
	e.Config = cfg
	e.Logger = logger
	e.started = sysmetrics.Now()
	return nil
}

// Finish logs the resources used since Load.
func (e *Env) Finish(cmd *cobra.Command) {
	e.Logger.Debug("command finished", "command", cmd.CommandPath(), "usage", e.started.Since())
}

// settings returns the config with cmd's explicitly set flags applied, and
// validates the result.
func (e *Env) settings(cmd *cobra.Command) (config.Config, error) {
	cfg := e.Config
	overrideInt32(cmd, "cutoff", &cfg.Cutoff)
	overrideInt64(cmd, "block", &cfg.Block)
	overrideInt(cmd, "workers", &cfg.Workers)
	overrideString(cmd, "unknown", &cfg.Unknown)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// addWorkFlags registers the flags for split-parallel commands.
func addWorkFlags(cmd *cobra.Command) {
	addBlockFlag(cmd)
	cmd.Flags().Int("workers", 0, "splits processed at once (default from config, number of CPUs)")
}

func addBlockFlag(cmd *cobra.Command) {
	cmd.Flags().Int64("block", 0, fmt.Sprintf("target split size in bytes (default from config, %d)", config.DefaultBlock))
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func overrideInt32(cmd *cobra.Command, name string, dst *int32) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt32(name)
		*dst = v
	}
}

func overrideInt64(cmd *cobra.Command, name string, dst *int64) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt64(name)
		*dst = v
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		*dst = v
	}
}
