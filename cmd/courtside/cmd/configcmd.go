package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/courtside-hq/courtside/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config prints the fully resolved configuration as YAML: file values,
environment overrides, and defaults merged in that order. Useful for
checking what a command will actually use.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return err
	}
	if devMode {
		cfg.DevMode = true
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}
	cfg.SetDevDefaults()

	if used := config.ConfigFileUsed(); used != "" {
		fmt.Fprintf(os.Stderr, "# loaded from %s\n", used)
	} else {
		fmt.Fprintln(os.Stderr, "# no config file found, showing defaults")
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
