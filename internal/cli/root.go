// Package cli implements the declscan command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/config"
)

var (
	flagWorkers     int
	flagFormat      string
	flagLineNumbers bool
	flagInclude     []string
	flagIgnore      []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "declscan",
	Short: "declscan - extract declarations from source trees",
	Long: `declscan scans C and C++ source files and extracts their declarations
(structs, unions, enums, classes, namespaces, functions, typedefs, and
macros) into a nested tree, without compiling anything.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0,
		"extraction workers (0 = one per CPU)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "",
		"output format: tree, json, markdown, paths, summary")
	rootCmd.PersistentFlags().BoolVar(&flagLineNumbers, "line-numbers", false,
		"annotate output with source line numbers")
	rootCmd.PersistentFlags().StringSliceVar(&flagInclude, "include", nil,
		"glob patterns selecting files to scan (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&flagIgnore, "ignore", nil,
		"glob patterns for paths to skip (repeatable)")
}

// loadConfig loads the project config for root and applies flag
// overrides. Flags win over file and environment values.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	cfg, err := config.NewLoader(root).Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("workers") {
		cfg.Scan.Workers = flagWorkers
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = flagFormat
	}
	if cmd.Flags().Changed("line-numbers") {
		cfg.Output.LineNumbers = flagLineNumbers
	}
	if cmd.Flags().Changed("include") {
		cfg.Paths.Source = flagInclude
	}
	if cmd.Flags().Changed("ignore") {
		cfg.Paths.Ignore = flagIgnore
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rootArg resolves the optional positional path argument.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
