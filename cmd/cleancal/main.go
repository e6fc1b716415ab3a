package main

import (
	"os"

	"github.com/spf13/cobra"

	appLog "cleancal/internal/log"
)

const version = "0.3.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "cleancal",
	Short:         "An endlessly scrollable calendar for the browser and the terminal",
	Long:          "cleancal - pages through months, fortnights and days of your calendar",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level from the config (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func defaultConfigPath() string {
	if p := os.Getenv("CLEANCAL_CONFIG"); p != "" {
		return p
	}
	return "./config.yaml"
}

// quiet drops log output below errors for full-screen commands.
func quiet() {
	if logLevel == "" {
		appLog.SetLevel(appLog.LevelError)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		appLog.Error("cleancal failed", err)
		os.Exit(1)
	}
}
