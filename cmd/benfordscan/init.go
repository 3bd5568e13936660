package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/benfordscan/internal/config"
)

//go:embed templates/benfordscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new benfordscan configuration file",
		Long: `Initialize creates a new .benfordscan configuration file in the current directory.

The generated file documents every setting and includes commented examples
for per-site cookies, headers and crawl limits.

Examples:
  # Create .benfordscan in current directory
  benfordscan init

  # Create config file at a specific path
  benfordscan init -o myconfig.yaml

  # Create $XDG_CONFIG_HOME/benfordscan/config.yaml
  benfordscan init --xdg

  # Force overwrite existing file
  benfordscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("xdg", false,
		"Write the configuration to the XDG config directory")
	cmd.MarkFlagsMutuallyExclusive("output", "xdg")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	useXDG, err := cmd.Flags().GetBool("xdg")
	if err != nil {
		return err
	}
	if useXDG {
		outputPath = filepath.Join(config.XDGConfigDir(), config.XDGConfigFile)
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/benfordscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Config files can hold cookies and tokens.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Crawl depth, threads and timeout")
	fmt.Fprintln(out, "  - Authentication cookies and headers per site")
	fmt.Fprintln(out, "  - A SOCKS5 proxy")

	if shadow := shadowingConfig(outputPath, config.SearchPaths()); shadow != "" {
		fmt.Fprintf(out, "\nNote: %s is found first and takes precedence over this file.\n", shadow)
	}

	return nil
}

// shadowingConfig returns the existing file that the config lookup would
// pick before outputPath, or "" if none does. Paths outside the lookup
// order are never shadowed.
func shadowingConfig(outputPath string, searchPaths []string) string {
	target, err := filepath.Abs(outputPath)
	if err != nil {
		return ""
	}
	for i, p := range searchPaths {
		if p != target {
			continue
		}
		for _, earlier := range searchPaths[:i] {
			if info, err := os.Stat(earlier); err == nil && info.Mode().IsRegular() {
				return earlier
			}
		}
		return ""
	}
	return ""
}
