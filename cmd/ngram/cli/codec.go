package cli

import (
	"fmt"
	"strconv"

	"ngram/internal/dict"
	"ngram/internal/pipeline"
	"ngram/internal/plan"

	"github.com/spf13/cobra"
)

// NewEncodeCommand returns the "encode" command.
func NewEncodeCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <dict> <input> <output>",
		Short: "Encode a corpus into a token stream",
		Long: "Replace every line of input with its token code. Words missing from the dictionary " +
			"are encoded as token 0. Plain inputs are split on line boundaries and encoded in parallel, " +
			"or along the ranges of a plan written by 'ngram split -o'.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.settings(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			d, err := loadDict(env, args[0])
			if err != nil {
				return err
			}
			in, out := args[1], args[2]
			enc := pipeline.NewFileEncoder(d, env.Logger, cfg.Block, cfg.Workers)

			var st pipeline.Stats
			if planPath, _ := cmd.Flags().GetString("plan"); planPath != "" {
				pl, err := plan.ReadFile(planPath)
				if err != nil {
					return err
				}
				if pl.Source != in {
					env.Logger.Warn("plan was computed for another path", "plan_source", pl.Source, "input", in)
				}
				pl.Source = in
				st, err = enc.EncodePlan(cmd.Context(), pl, out)
				if err != nil {
					return err
				}
			} else {
				st, err = enc.EncodeFile(cmd.Context(), in, out)
				if err != nil {
					return err
				}
			}
			return printStats(p, out, st)
		},
	}

	cmd.Flags().String("plan", "", "split plan to encode along (see 'ngram split')")
	addWorkFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

// NewDecodeCommand returns the "decode" command.
func NewDecodeCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <dict> <input> <output>",
		Short: "Decode a token stream into words",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.settings(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			d, err := loadDict(env, args[0])
			if err != nil {
				return err
			}
			st, err := pipeline.DecodeFile(d, args[1], args[2], cfg.Unknown)
			if err != nil {
				return err
			}
			env.Logger.Info("decode finished", "output", args[2], "words", st.Lines, "unknown", st.Unknown)
			return printStats(p, args[2], st)
		},
	}

	cmd.Flags().String("unknown", "", "word written for token 0 (default from config, \"<unk>\")")
	addFormatFlag(cmd)
	return cmd
}

func loadDict(env *Env, path string) (*dict.Dictionary, error) {
	d, err := dict.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	env.Logger.Info("dictionary loaded", "path", path, "entries", d.Len())
	return d, nil
}

func printStats(p *printer, out string, st pipeline.Stats) error {
	if p.format == "json" {
		return p.json(struct {
			Output  string `json:"output"`
			Lines   int64  `json:"lines"`
			Unknown int64  `json:"unknown"`
			Bytes   int64  `json:"bytes"`
		}{out, st.Lines, st.Unknown, st.Bytes})
	}
	p.kv([][2]string{
		{"Output", out},
		{"Lines", strconv.FormatInt(st.Lines, 10)},
		{"Unknown", strconv.FormatInt(st.Unknown, 10)},
		{"Bytes", strconv.FormatInt(st.Bytes, 10)},
	})
	return nil
}
