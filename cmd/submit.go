package cmd

import (
	"github.com/javierggt/pyglidein/internal/submit"
	"github.com/javierggt/pyglidein/internal/utils"
	"github.com/spf13/cobra"
)

var (
	submitCPUs   int
	submitMemory float64
	submitDisk   float64
	submitGPUs   int
	submitCVMFS  bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Generate the submit file(s) for a resource request and launch a glidein",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		state := submit.State{
			CPUs:     submitCPUs,
			MemoryMB: submitMemory,
			DiskGB:   submitDisk,
			GPUs:     submitGPUs,
			CVMFS:    submitCVMFS,
		}

		sub, err := submit.New(cfg)
		if err != nil {
			return err
		}

		if dryRun {
			filename, err := sub.Generate(state)
			if err != nil {
				return err
			}
			utils.PrintMessage("Wrote %s (dry run, not submitted)", utils.StylePath(filename))
			return nil
		}

		if err := sub.Submit(state); err != nil {
			return err
		}
		utils.PrintSuccess("Glidein submitted")
		return nil
	},
}

func init() {
	submitCmd.Flags().IntVar(&submitCPUs, "cpus", 1, "Requested CPU cores")
	submitCmd.Flags().Float64Var(&submitMemory, "memory", 2000, "Requested memory in MB")
	submitCmd.Flags().Float64Var(&submitDisk, "disk", 1, "Requested disk in GB")
	submitCmd.Flags().IntVar(&submitGPUs, "gpus", 0, "Requested GPUs")
	submitCmd.Flags().BoolVar(&submitCVMFS, "cvmfs", true, "Whether the site provides CVMFS")

	rootCmd.AddCommand(submitCmd)
}
