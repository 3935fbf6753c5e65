// Command bdc downloads FCC Broadband Data Collection availability files,
// runs the filter/aggregation pipeline, and exports one merged table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bdc/internal/config"
)

var (
	logger  *zap.Logger
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "bdc",
	Short: "FCC BDC fixed-broadband availability puller",
	Long: `Downloads nationwide fixed-broadband availability data from the FCC
Broadband Data Collection map API, filters and aggregates it per state, and
exports one merged per-geography table.

Start with one state and one technology; the underlying files are large.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists", cfgPath)
		}
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgPath)
		return nil
	},
}

func initLogger() error {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "bdc.yaml", "path to run configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(initCmd, datesCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
