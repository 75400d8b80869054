// Package cli implements the craftstudio-mcp command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/craftstudio/craftstudio-mcp/internal/appconfig"
	"github.com/craftstudio/craftstudio-mcp/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "craftstudio-mcp",
	Short: "craftstudio-mcp — expose the CraftStudio action catalog as MCP tools over stdio",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) Materialize the fully merged configuration
		//    (flags > env > config > defaults) into a stable snapshot.
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		currentConfig = &cfg

		logging.SetLevel(debugLevel(cfg.Debug))
		return nil
	},
	// Running the bare binary starts the stdio server, which is what MCP
	// client configurations invoke.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (e.g., craftstudio.yaml)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().String("api-key", "", "CraftStudio API key")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL")
	rootCmd.PersistentFlags().Int("timeout", 0, "backend request timeout in seconds")
	rootCmd.PersistentFlags().String("audit-db", "", "path of the SQLite invocation log (empty keeps it in memory)")
	rootCmd.PersistentFlags().Int("debug", 0, "log verbosity (0=error 1=warn 2=info 3=debug)")
	rootCmd.PersistentFlags().String("top-up-url", "", "override the billing top-up URL in payment descriptors")

	// Bind flags to Viper keys (flags override env and config)
	_ = viper.BindPFlag("apiKey", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("baseUrl", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("auditDb", rootCmd.PersistentFlags().Lookup("audit-db"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("topUpUrl", rootCmd.PersistentFlags().Lookup("top-up-url"))

	// Environment overrides config-file values
	_ = viper.BindEnv("apiKey", "CRAFTSTUDIO_API_KEY")
	_ = viper.BindEnv("baseUrl", "CRAFTSTUDIO_BASE_URL")
	_ = viper.BindEnv("timeout", "CRAFTSTUDIO_TIMEOUT")
	_ = viper.BindEnv("auditDb", "CRAFTSTUDIO_AUDIT_DB")
	_ = viper.BindEnv("debug", "CRAFTSTUDIO_DEBUG")
	_ = viper.BindEnv("topUpUrl", "CRAFTSTUDIO_TOP_UP_URL")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("craftstudio")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/craftstudio")
		}
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	viper.SetDefault("baseUrl", appconfig.DefaultBaseURL)
	viper.SetDefault("timeout", 0)
	viper.SetDefault("debug", 0)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file: fine, we'll use defaults/env/flags
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// getConfig returns the loaded application configuration for subcommands.
func getConfig() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}

func debugLevel(v int) slog.Level {
	switch v {
	case 1:
		return slog.LevelWarn
	case 2:
		return slog.LevelInfo
	case 3:
		return slog.LevelDebug
	default:
		return slog.LevelError
	}
}
