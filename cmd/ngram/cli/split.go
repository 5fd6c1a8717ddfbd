package cli

import (
	"fmt"
	"strconv"

	"ngram/internal/plan"

	"github.com/spf13/cobra"
)

// NewSplitCommand returns the "split" command, which computes the
// boundary-aligned ranges of a file.
func NewSplitCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <input>",
		Short: "Compute boundary-aligned splits of a file",
		Long: "Partition input into contiguous ranges of roughly --block bytes, each ending just after " +
			"a delimiter byte. With -o the ranges are written as a plan for 'ngram encode --plan'; " +
			"otherwise they are printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.settings(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetString("delimiter")
			delim, err := parseDelimiter(raw)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			pl, err := plan.Compute(args[0], cfg.Block, delim)
			if err != nil {
				return err
			}
			env.Logger.Info("split computed", "path", args[0], "size", pl.Size, "splits", len(pl.Ranges))

			if out, _ := cmd.Flags().GetString("output"); out != "" {
				if err := plan.WriteFile(out, pl); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
				env.Logger.Info("plan written", "path", out)
				return nil
			}

			if p.format == "json" {
				return p.json(pl.Ranges)
			}
			rows := make([][]string, len(pl.Ranges))
			for i, r := range pl.Ranges {
				rows[i] = []string{
					strconv.Itoa(i),
					strconv.FormatInt(r.Start, 10),
					strconv.FormatInt(r.End, 10),
					strconv.FormatInt(r.End-r.Start, 10),
				}
			}
			p.table([]string{"SPLIT", "START", "END", "LENGTH"}, rows)
			return nil
		},
	}

	cmd.Flags().String("delimiter", `\n`, "boundary byte, a single character or an escape such as \\n or \\x00")
	cmd.Flags().StringP("output", "o", "", "write the splits as a plan file instead of printing them")
	addBlockFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

// parseDelimiter accepts a single byte or one Go character escape that
// denotes a byte.
func parseDelimiter(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	v, multibyte, tail, err := strconv.UnquoteChar(s, '\'')
	if err != nil || tail != "" || multibyte || v > 0xFF {
		return 0, fmt.Errorf("delimiter %q is not a single byte", s)
	}
	return byte(v), nil
}
