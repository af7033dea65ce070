package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/lang"
)

// langsCmd lists the supported languages.
var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List supported languages",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range lang.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-6s %s\n",
				p.Tag, p.Name, strings.Join(p.Extensions, " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(langsCmd)
}
