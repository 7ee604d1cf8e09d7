// Package config loads and validates per-cluster submission settings.
package config

// Version is the pyglidein client version.
const Version = "1.5.0"

// SchedulerCondor and SchedulerPBS are the supported scheduler identifiers
// accepted in the Cluster.scheduler config key.
const (
	SchedulerCondor = "condor"
	SchedulerPBS    = "pbs"
)

// ClusterSection describes the scheduler running on the target cluster.
type ClusterSection struct {
	// Scheduler selects the submit back end: "condor" or "pbs".
	Scheduler string `mapstructure:"scheduler"`

	// SubmitCommand is the scheduler client invoked with the generated
	// file as its last argument (e.g. "condor_submit", "qsub").
	SubmitCommand string `mapstructure:"submit_command"`

	// MemPerCore is the memory ceiling in MB assumed available per
	// requested CPU core. Required for the PBS back end.
	MemPerCore float64 `mapstructure:"mem_per_core"`

	// WalltimeHrs is the wall-time limit written into PBS scripts.
	WalltimeHrs int `mapstructure:"walltime_hrs"`

	// Account is an optional allocation string emitted as "#PBS -A".
	Account string `mapstructure:"account"`

	// MinClientVersion optionally gates submission on a minimum client
	// version (checked by the "check" command).
	MinClientVersion string `mapstructure:"min_client_version"`
}

// SubmitFileSection controls the generated artifact names and the
// site-specific text blocks spliced into them verbatim.
type SubmitFileSection struct {
	Filename       string `mapstructure:"filename"`
	EnvWrapperName string `mapstructure:"env_wrapper_name"`
	LocalDir       string `mapstructure:"local_dir"`
	CustomHeader   string `mapstructure:"custom_header"`
	CustomMiddle   string `mapstructure:"custom_middle"`
	CustomBody     string `mapstructure:"custom_body"`
	CustomFooter   string `mapstructure:"custom_footer"`
	CustomEnd      string `mapstructure:"custom_end"`
}

// GlideinSection locates the glidein artifacts referenced by generated scripts.
type GlideinSection struct {
	// Executable is the path to the glidein startup script. It must exist
	// on disk before a Condor submit file can be generated.
	Executable string `mapstructure:"executable"`

	// Tarball is an optional glidein payload staged next to the executable.
	Tarball string `mapstructure:"tarball"`

	// Loc is the directory the PBS script symlinks the artifacts from.
	Loc string `mapstructure:"loc"`
}

// ClusterConfig is the full per-cluster configuration. It is read-only for
// the submit generators: one instance is loaded at startup and passed down.
type ClusterConfig struct {
	Cluster    ClusterSection    `mapstructure:"cluster"`
	SubmitFile SubmitFileSection `mapstructure:"submit_file"`
	Glidein    GlideinSection    `mapstructure:"glidein"`

	// CustomEnv holds extra environment variables injected into the
	// generated environment wrapper and PBS export block.
	CustomEnv map[string]string `mapstructure:"custom_env"`
}
