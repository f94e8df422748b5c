package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for researcher.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "researcher",
		Short: "Automated research reports from the web",
		Long: `researcher turns a question into a research report.

For each question it picks a research agent, generates search queries,
searches the web, scrapes and summarizes the results with an LLM, and
writes a report in the requested style.

Summaries are cached per question, so running the same question again
reuses earlier research unless --no-cache is given.

API keys are read from the environment:
  OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, TAVILY_API_KEY`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(NewResearchCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
