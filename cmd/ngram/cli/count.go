package cli

import (
	"fmt"
	"strconv"

	"ngram/internal/config"
	"ngram/internal/corpus"
	"ngram/internal/dict"
	"ngram/internal/vocab"

	"github.com/spf13/cobra"
)

// NewCountCommand returns the "count" command, which builds a dictionary
// from word frequencies.
func NewCountCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <input>... -o <dict>",
		Short: "Count words and store a dictionary",
		Long: "Count the words (one per line) of every input and store the ones at or above the cutoff " +
			"as a dictionary, most frequent first. Inputs may be glob patterns such as 'corpus/**/*.txt'; " +
			".zst and .br inputs are decompressed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.settings(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("output")
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			paths, err := corpus.Expand(args)
			if err != nil {
				return err
			}
			env.Logger.Info("counting", "inputs", len(paths), "workers", cfg.Workers, "block", cfg.Block)

			counts, err := vocab.NewCounter(env.Logger, cfg.Block, cfg.Workers).CountFiles(cmd.Context(), paths)
			if err != nil {
				return err
			}
			ranked := vocab.Rank(counts)

			st, err := dict.StoreFile(out, ranked, cfg.Cutoff)
			if err != nil {
				return fmt.Errorf("store dictionary: %w", err)
			}
			pct := coverage(st.Mass, counts.Lines)
			env.Logger.Info("dictionary stored", "path", out, "entries", st.Entries,
				"distinct", len(ranked), "cutoff", cfg.Cutoff, "coverage", pct)

			if p.format == "json" {
				return p.json(countSummary{
					Dictionary: out,
					Inputs:     len(paths),
					Lines:      counts.Lines,
					Distinct:   len(ranked),
					Entries:    st.Entries,
					Mass:       st.Mass,
					Coverage:   pct,
				})
			}
			p.kv([][2]string{
				{"Dictionary", out},
				{"Inputs", strconv.Itoa(len(paths))},
				{"Lines", strconv.FormatInt(counts.Lines, 10)},
				{"Distinct", strconv.Itoa(len(ranked))},
				{"Entries", strconv.Itoa(st.Entries)},
				{"Coverage", fmt.Sprintf("%.2f%%", pct)},
			})
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "dictionary file to write")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().Int32("cutoff", 0, fmt.Sprintf("minimum frequency for a word to get a token (default from config, %d)", config.DefaultCutoff))
	addWorkFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

type countSummary struct {
	Dictionary string  `json:"dictionary"`
	Inputs     int     `json:"inputs"`
	Lines      int64   `json:"lines"`
	Distinct   int     `json:"distinct"`
	Entries    int     `json:"entries"`
	Mass       int64   `json:"mass"`
	Coverage   float64 `json:"coverage"`
}

// coverage is the percentage of corpus lines whose word got a token.
func coverage(mass, lines int64) float64 {
	if lines == 0 {
		return 0
	}
	return float64(mass) / float64(lines) * 100
}
