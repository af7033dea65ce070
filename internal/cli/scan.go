package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/config"
	"github.com/declscan/declscan/internal/discovery"
	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/report"
)

var flagQuiet bool

// scanCmd extracts declarations from a directory tree and reports them.
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Extract declarations from a source tree",
	Long: `Scan walks a directory tree, extracts declarations from every
supported source file concurrently, and renders the result in the
selected output format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootArg(args)
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return err
		}

		results, skipped, err := runScan(cmd, root, cfg)
		if err != nil {
			return err
		}

		format, err := report.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		var opts []report.Option
		if cfg.Output.LineNumbers {
			opts = append(opts, report.WithLineNumbers())
		}
		if err := report.New(format, opts...).Write(cmd.OutOrStdout(), results); err != nil {
			return err
		}

		if !flagQuiet {
			for _, s := range skipped {
				if s.Reason == discovery.SkipBinary || s.Reason == discovery.SkipTooLarge {
					log.Printf("skipped %s (%s)", s.Path, s.Reason)
				}
			}
		}
		return nil
	},
}

// runScan discovers and extracts, shared by scan, search, and watch.
func runScan(cmd *cobra.Command, root string, cfg *config.Config) ([]extract.Result, []discovery.Skipped, error) {
	disc, err := discovery.New(root, cfg.Paths.Source, cfg.Paths.Ignore,
		discovery.WithMaxFileSize(int64(cfg.Scan.MaxFileSizeMB)*1024*1024))
	if err != nil {
		return nil, nil, err
	}

	files, skipped, err := disc.Discover()
	if err != nil {
		return nil, nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(files) == 0 {
		return nil, skipped, nil
	}

	progress := newScanProgress(len(files), flagQuiet || !isTerminal())
	runner := extract.NewRunner(cfg.Scan.Workers, progress.callback())

	results, err := runner.Run(cmd.Context(), files)
	progress.finish()
	if err != nil {
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}
	return results, skipped, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false,
		"suppress progress output")
	rootCmd.AddCommand(scanCmd)
}
