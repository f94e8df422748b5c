package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/researcher/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/researcher.yaml
var configTemplate embed.FS

const templatePath = "templates/researcher.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a researcher configuration file",
		Long: `Init writes a commented .researcher.yaml to the current directory.

The file sets research defaults (provider, models, report type, language,
search limits), custom agent role prompts, and per-host scrape headers
and cookies.

Examples:
  # Create .researcher.yaml in the current directory
  researcher init

  # Create the file in the XDG config directory
  researcher init -o ~/.config/researcher/.researcher.yaml

  # Overwrite an existing file
  researcher init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - the default LLM provider, models and report type")
	fmt.Fprintln(out, "  - custom agent role prompts")
	fmt.Fprintln(out, "  - per-host scrape headers and cookies")

	return nil
}
