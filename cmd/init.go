package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/modcycle/internal/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to .modcyclerc.json",
	Long: `init writes the configuration modcycle would use right now (defaults merged
with any environment variables and flags) to .modcyclerc.json in the
current directory, so it can be edited and committed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := runInit(forceInit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

// runInit saves the effective configuration and returns the file written.
func runInit(force bool) (string, error) {
	path := config.FileNames[0]
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return "", fmt.Errorf("error loading configuration: %w", err)
	}

	// the root is detected at run time
	cfg.Root = ""
	if err := config.SaveConfig(cfg, path); err != nil {
		return "", err
	}
	return path, nil
}
