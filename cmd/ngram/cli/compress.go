package cli

import (
	"fmt"
	"os"
	"strconv"

	"ngram/internal/corpus"

	"github.com/spf13/cobra"
)

// NewCompressCommand returns the "compress" command, which prepares
// compressed corpus inputs for count and encode.
func NewCompressCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <input>...",
		Short: "Write zstd or brotli compressed copies of corpus files",
		Long: "Write a compressed sibling (.zst or .br) of every input. Compressed inputs are read " +
			"sequentially by count and encode.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("codec")
			c, err := corpus.ParseCompression(name)
			if err != nil {
				return err
			}
			remove, _ := cmd.Flags().GetBool("remove")
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			paths, err := corpus.Expand(args)
			if err != nil {
				return err
			}

			type result struct {
				Input  string `json:"input"`
				Output string `json:"output"`
				Before int64  `json:"before"`
				After  int64  `json:"after"`
			}
			results := make([]result, 0, len(paths))
			for _, path := range paths {
				before, err := fileSize(path)
				if err != nil {
					return err
				}
				out, err := corpus.Compress(path, c, remove)
				if err != nil {
					return err
				}
				after, err := fileSize(out)
				if err != nil {
					return err
				}
				env.Logger.Info("compressed", "input", path, "output", out, "codec", c, "before", before, "after", after)
				results = append(results, result{Input: path, Output: out, Before: before, After: after})
			}

			if p.format == "json" {
				return p.json(results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Input, r.Output, strconv.FormatInt(r.Before, 10), strconv.FormatInt(r.After, 10)}
			}
			p.table([]string{"INPUT", "OUTPUT", "BEFORE", "AFTER"}, rows)
			return nil
		},
	}

	cmd.Flags().String("codec", "zstd", "compression: zstd or brotli")
	cmd.Flags().Bool("remove", false, "remove each input once its compressed copy is written")
	addFormatFlag(cmd)
	return cmd
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
