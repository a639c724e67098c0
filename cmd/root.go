package cmd

import (
	"fmt"
	"os"

	"delivery-tracker/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "delivery-tracker",
	Short: "Delivery schedule reconciliation",
	Long: `Delivery Tracker reconciles the master list of manufacturing items against
dated planning snapshots and per-item event logs, and reports how far each
actual completion date is from the planned one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config gives readable CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding config.yaml and .env")
}
