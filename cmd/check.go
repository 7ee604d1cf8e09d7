package cmd

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/javierggt/pyglidein/internal/config"
	"github.com/javierggt/pyglidein/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Preflight the cluster config: binaries, glidein artifacts, client version",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0

		// The config itself already validated during load; report that.
		utils.PrintSuccess("Cluster config is valid (scheduler: %s)", cfg.Cluster.Scheduler)

		// Submit binary reachable?
		argv := strings.Fields(cfg.Cluster.SubmitCommand)
		if path, err := exec.LookPath(argv[0]); err == nil {
			utils.PrintSuccess("Submit command found: %s", utils.StylePath(path))
		} else {
			utils.PrintError("Submit command %s not found in PATH", utils.StyleName(argv[0]))
			failed++
		}

		// Glidein artifacts present?
		if utils.FileExists(cfg.Glidein.Executable) {
			utils.PrintSuccess("Glidein executable: %s", utils.StylePath(cfg.Glidein.Executable))
		} else {
			utils.PrintError("Glidein executable missing: %s", utils.StylePath(cfg.Glidein.Executable))
			failed++
		}
		if cfg.Glidein.Tarball != "" {
			if utils.FileExists(cfg.Glidein.Tarball) {
				utils.PrintSuccess("Glidein tarball: %s", utils.StylePath(cfg.Glidein.Tarball))
			} else {
				utils.PrintError("Glidein tarball missing: %s", utils.StylePath(cfg.Glidein.Tarball))
				failed++
			}
		}

		// Client version gate.
		if min := cfg.Cluster.MinClientVersion; min != "" {
			if compareVersions(config.Version, min) < 0 {
				utils.PrintError("Client version %s is older than required %s",
					utils.StyleNumber(config.Version), utils.StyleNumber(min))
				failed++
			} else {
				utils.PrintSuccess("Client version %s satisfies minimum %s",
					utils.StyleNumber(config.Version), utils.StyleNumber(min))
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d preflight check(s) failed", failed)
		}
		return nil
	},
}

// compareVersions compares two semantic versions. It returns:
//
//	-1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2.
//
// A leading 'v' is optional on either side. If a version cannot be parsed
// the first is assumed older so the check fails safe.
func compareVersions(v1, v2 string) int {
	if !strings.HasPrefix(v1, "v") {
		v1 = "v" + v1
	}
	if !strings.HasPrefix(v2, "v") {
		v2 = "v" + v2
	}
	c1 := semver.Canonical(v1)
	c2 := semver.Canonical(v2)
	if c1 == "" || c2 == "" {
		return -1
	}
	return semver.Compare(c1, c2)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
