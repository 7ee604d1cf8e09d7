package cmd

import (
	"fmt"
	"os"

	"github.com/javierggt/pyglidein/internal/config"
	"github.com/javierggt/pyglidein/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
	dryRun    bool

	// cfg is the cluster configuration loaded once before any subcommand
	// runs and passed read-only into the generators.
	cfg *config.ClusterConfig
)

var rootCmd = &cobra.Command{
	Use:           "pyglidein",
	Short:         "Generate and submit glidein jobs to HTCondor or PBS clusters.",
	Version:       config.Version,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugMode {
			utils.DebugMode = true
			utils.PrintDebug("pyglidein version %s", config.Version)
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		utils.PrintDebug("Scheduler: %s", utils.StyleName(cfg.Cluster.Scheduler))
		utils.PrintDebug("Submit command: %s", utils.StyleCommand(cfg.Cluster.SubmitCommand))
		if dryRun {
			utils.PrintDebug("Dry-run mode enabled (submit command will not run)")
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the cluster config file (default: cluster.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Generate submit files without running the submit command")
}
