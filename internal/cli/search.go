package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/search"
)

var (
	flagSearchKind     string
	flagSearchLanguage string
	flagSearchPath     string
	flagSearchLimit    int
)

// searchCmd scans a tree, indexes the declarations, and queries them.
var searchCmd = &cobra.Command{
	Use:   "search <query> [path]",
	Short: "Search declarations in a source tree",
	Long: `Search extracts declarations from the tree, builds an in-memory
full-text index, and runs the query against it. The query uses bleve
query-string syntax; wildcards like 'cache_*' are supported.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		root := rootArg(args[1:])
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return err
		}

		results, _, err := runScan(cmd, root, cfg)
		if err != nil {
			return err
		}

		idx, err := search.NewIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		if err := idx.IndexResults(cmd.Context(), results); err != nil {
			return err
		}

		hits, err := idx.Search(cmd.Context(), query, search.Options{
			Kind:     flagSearchKind,
			Language: flagSearchLanguage,
			Path:     flagSearchPath,
			Limit:    flagSearchLimit,
		})
		if err != nil {
			return err
		}

		if len(hits) == 0 {
			fmt.Fprintln(os.Stderr, "no matches")
			return nil
		}
		for _, hit := range hits {
			line := fmt.Sprintf("%s:%d: %s %s", hit.Path, hit.Line, hit.Kind, hit.Name)
			if hit.Signature != "" {
				line += " " + hit.Signature
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchKind, "kind", "",
		"restrict to one declaration kind (struct, function, ...)")
	searchCmd.Flags().StringVar(&flagSearchLanguage, "lang", "",
		"restrict to one language tag")
	searchCmd.Flags().StringVar(&flagSearchPath, "path", "",
		"restrict to paths matching a wildcard pattern")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 15,
		"maximum number of hits")
	rootCmd.AddCommand(searchCmd)
}
