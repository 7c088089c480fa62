package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version can be set at build time using ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "codeguardian",
	Short: "A static scanner for security, performance, maintainability and AI-generated code",
	Long: `Code Guardian analyzes source code for security vulnerabilities,
performance anti-patterns and maintainability problems, and estimates how
likely each file is to be AI-generated.

It produces a severity-gated pass/fail signal for CI pipelines plus a
structured report in table, JSON, Markdown or SARIF format.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Code Guardian - Use 'codeguardian help' for available commands")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is .codeguardian.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "table", "output format (table, json, markdown, sarif)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codeguardian version %s\n", Version)
		},
	})
}
