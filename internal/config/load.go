package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the cluster config file (without extension).
const ConfigFilename = "cluster"

// ConfigType is the type of config file.
const ConfigType = "yaml"

// Load reads the cluster configuration and validates it eagerly.
//
// If path is non-empty it names the config file directly. Otherwise the file
// is searched in (highest to lowest priority):
//  1. the current directory
//  2. ~/.config/pyglidein/cluster.yaml
//  3. /etc/pyglidein/cluster.yaml
//
// Environment variables with the PYGLIDEIN_ prefix override file values
// (e.g. PYGLIDEIN_CLUSTER_SUBMIT_COMMAND).
func Load(path string) (*ClusterConfig, error) {
	v := viper.New()
	v.SetConfigType(ConfigType)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFilename)
		v.AddConfigPath(".")
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(userConfigDir, "pyglidein"))
		}
		v.AddConfigPath("/etc/pyglidein")
	}

	v.SetEnvPrefix("PYGLIDEIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading cluster config: %w", err)
	}

	var cfg ClusterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding cluster config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for optional config keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cluster.walltime_hrs", 14)
	v.SetDefault("submit_file.filename", "submit")
	v.SetDefault("submit_file.env_wrapper_name", "env_wrapper.sh")
	v.SetDefault("submit_file.local_dir", ".")
}

// Validate checks required keys up front so that a broken config fails at
// load time instead of surfacing as a generic failure mid-emission.
func (c *ClusterConfig) Validate() error {
	var errs ValidationErrors

	switch strings.ToLower(c.Cluster.Scheduler) {
	case SchedulerCondor, SchedulerPBS:
	case "":
		errs = append(errs, NewValidationError("cluster.scheduler", "is required"))
	default:
		errs = append(errs, NewValidationError("cluster.scheduler",
			fmt.Sprintf("must be %q or %q, got %q", SchedulerCondor, SchedulerPBS, c.Cluster.Scheduler)))
	}

	if strings.TrimSpace(c.Cluster.SubmitCommand) == "" {
		errs = append(errs, NewValidationError("cluster.submit_command", "is required"))
	}

	if strings.ToLower(c.Cluster.Scheduler) == SchedulerPBS && c.Cluster.MemPerCore <= 0 {
		errs = append(errs, NewValidationError("cluster.mem_per_core", "must be a positive MB value for the pbs scheduler"))
	}

	if c.Cluster.WalltimeHrs <= 0 {
		errs = append(errs, NewValidationError("cluster.walltime_hrs", "must be a positive hour count"))
	}

	if c.Glidein.Executable == "" {
		errs = append(errs, NewValidationError("glidein.executable", "is required"))
	}

	if c.SubmitFile.Filename == "" {
		errs = append(errs, NewValidationError("submit_file.filename", "is required"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
