package main

import (
	"github.com/spf13/cobra"

	"github.com/VectorBits/Chainsight/internal/config"
	"github.com/VectorBits/Chainsight/internal/logger"
)

var (
	cfgPath   string
	verbose   bool
	logToFile bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chainsight",
	Short: "Smart contract protocol analyzer",
	Long: `Chainsight extracts structural facts from Solidity sources,
synthesizes a deterministic protocol report with architecture diagrams
and a security assessment, and optionally enriches it with an AI pass
that can never degrade the baseline result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		return logger.Init(level, logToFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to settings.yaml (default: search config/, cwd)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "tee logs to a timestamped file under logs/")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}
