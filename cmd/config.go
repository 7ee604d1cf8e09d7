package cmd

import (
	"fmt"

	"github.com/javierggt/pyglidein/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the pyglidein configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective cluster configuration",
	Args:  cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		printKV := func(key string, value interface{}) {
			fmt.Printf("  %s = %v\n", utils.StyleName(key), value)
		}

		fmt.Println(utils.StyleHint("[cluster]"))
		printKV("scheduler", cfg.Cluster.Scheduler)
		printKV("submit_command", cfg.Cluster.SubmitCommand)
		printKV("mem_per_core", cfg.Cluster.MemPerCore)
		printKV("walltime_hrs", cfg.Cluster.WalltimeHrs)
		if cfg.Cluster.Account != "" {
			printKV("account", cfg.Cluster.Account)
		}
		if cfg.Cluster.MinClientVersion != "" {
			printKV("min_client_version", cfg.Cluster.MinClientVersion)
		}

		fmt.Println(utils.StyleHint("[submit_file]"))
		printKV("filename", cfg.SubmitFile.Filename)
		printKV("env_wrapper_name", cfg.SubmitFile.EnvWrapperName)
		printKV("local_dir", cfg.SubmitFile.LocalDir)

		fmt.Println(utils.StyleHint("[glidein]"))
		printKV("executable", cfg.Glidein.Executable)
		if cfg.Glidein.Tarball != "" {
			printKV("tarball", cfg.Glidein.Tarball)
		}
		printKV("loc", cfg.Glidein.Loc)

		if len(cfg.CustomEnv) > 0 {
			fmt.Println(utils.StyleHint("[custom_env]"))
			for k, v := range cfg.CustomEnv {
				printKV(k, v)
			}
		}

		fmt.Println(utils.StyleHint("[flags]"))
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			printKV(f.Name, f.Value.String())
		})
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
