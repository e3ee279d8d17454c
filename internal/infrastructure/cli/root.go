package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	logLevel   string

	// appConfig is loaded once per invocation before any command runs.
	appConfig config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "featurecraft",
	Version: Version,
	Short:   "Break Azure DevOps features into backlog items with a language model",
	Long: `featurecraft reads Features from an Azure DevOps Server (TFS) project,
asks a language model to split a Feature into Product Backlog Items and
creates them in the tracker, linked to the Feature. It can also create new
Features from the command line, the web UI or an MCP client.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), warning)
	}
	appConfig = cfg
	slog.Debug("configuration loaded", "file", configPath, "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		printError(RootCmd, MapError(err))
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ./featurecraft.yaml if present)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
