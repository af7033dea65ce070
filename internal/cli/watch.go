package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/source"
	"github.com/declscan/declscan/internal/watch"
)

// watchCmd re-extracts files as they change and prints each change.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a source tree and re-extract on change",
	Long: `Watch performs an initial scan, then monitors the tree for
changes. Each changed file is re-extracted and summarized; files whose
bytes did not change are skipped. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootArg(args)
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return err
		}

		results, _, err := runScan(cmd, root, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "watching %s (%d files scanned)\n", root, len(results))

		w, err := watch.New(root,
			watch.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond))
		if err != nil {
			return err
		}
		defer w.Stop()

		// Seed fingerprints so the first cycle only touches real
		// changes. Scan paths are root-relative; watch events are not.
		primed := make([]*source.File, 0, len(results))
		primedResults := make([]extract.Result, 0, len(results))
		for _, res := range results {
			if res.Err != nil || res.Model == nil {
				continue
			}
			abs := filepath.Join(root, res.Path)
			content, err := os.ReadFile(abs)
			if err != nil {
				continue
			}
			primed = append(primed, source.New(abs, content, res.Model.Language))
			primedResults = append(primedResults, res)
		}
		w.Prime(primed, primedResults)

		if err := w.Start(cmd.Context(), printChanges); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "stopping")
			return nil
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

func printChanges(changes []watch.Change) {
	for _, change := range changes {
		switch {
		case change.Err != nil:
			log.Printf("%s: %v", change.Path, change.Err)
		case change.Op == watch.OpRemoved:
			fmt.Printf("removed %s\n", change.Path)
		default:
			counts := change.Model.CountByKind()
			total := 0
			for _, n := range counts {
				total += n
			}
			fmt.Printf("updated %s (%d declarations)\n", change.Path, total)
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
