package submit

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/javierggt/pyglidein/internal/config"
	"github.com/javierggt/pyglidein/internal/utils"
)

// requestScale pads Condor resource requests by a 10% safety margin so the
// matched slot is never smaller than what the glidein advertises.
const requestScale = 1.1

// gpuSentinel is the AssignedGPUs value HTCondor reports for a slot that has
// no real GPU attached.
const gpuSentinel = "10000"

// CondorSubmit generates an HTCondor submit description file plus an
// environment wrapper script, and submits them with condor_submit.
type CondorSubmit struct {
	cfg *config.ClusterConfig
}

// NewCondorSubmit creates a Condor submitter for the given cluster config.
func NewCondorSubmit(cfg *config.ClusterConfig) *CondorSubmit {
	return &CondorSubmit{cfg: cfg}
}

// WriteEnvWrapper writes the executable wrapper script that runs on the
// worker node at job start. It reads the granted CPU/memory/disk/GPU values
// from the slot's machine ad, sanitizes the GPU id, and re-execs the glidein
// startup script with a clean environment containing exactly CPUS, GPUS,
// MEMORY, DISK and the configured custom variables.
func (c *CondorSubmit) WriteEnvWrapper(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	lw := newLineWriter(file)
	lw.line("#!/bin/sh")
	lw.line(`CPUS=$(grep -e "^Cpus" $_CONDOR_MACHINE_AD | awk '{print $3}')`)
	lw.line(`MEMORY=$(grep -e "^Memory" $_CONDOR_MACHINE_AD | awk '{print $3}')`)
	lw.line(`DISK=$(grep -e "^Disk" $_CONDOR_MACHINE_AD | awk '{print $3}')`)
	lw.line(`GPUS=$(grep -e "^AssignedGPUs" $_CONDOR_MACHINE_AD | awk '{print $3}' | sed -e 's/"//g')`)
	// 10000 (with or without the prefix already applied) means no GPU was
	// assigned; any other numeric id gets the CUDA prefix the glidein
	// parser expects; anything else is treated as no GPU.
	lw.line(`case "$GPUS" in`)
	lw.line(`    %s|CUDA%s)`, gpuSentinel, gpuSentinel)
	lw.line(`        GPUS=0`)
	lw.line(`        ;;`)
	lw.line(`    ''|*[!0-9]*)`)
	lw.line(`        GPUS=""`)
	lw.line(`        ;;`)
	lw.line(`    *)`)
	lw.line(`        GPUS="CUDA$GPUS"`)
	lw.line(`        ;;`)
	lw.line(`esac`)

	execLine := `exec env -i CPUS=$CPUS GPUS=$GPUS MEMORY=$MEMORY DISK=$DISK`
	for _, k := range sortedEnvKeys(c.cfg.CustomEnv) {
		execLine += fmt.Sprintf(" %s=%s", k, c.cfg.CustomEnv[k])
	}
	execLine += " ./" + filepath.Base(c.cfg.Glidein.Executable)
	lw.line("%s", execLine)

	if err := lw.flush(); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return utils.MakeExecutable(filename)
}

// WriteSubmitFile writes the HTCondor submit description file for state to
// filename. envWrapper names the wrapper script set as the job executable.
// The configured glidein executable (and tarball, when set) must exist on
// disk; a missing artifact is fatal before anything is written.
func (c *CondorSubmit) WriteSubmitFile(filename, envWrapper string, state State) error {
	if !utils.FileExists(c.cfg.Glidein.Executable) {
		return fmt.Errorf("%w: %s", ErrMissingExecutable, c.cfg.Glidein.Executable)
	}
	if c.cfg.Glidein.Tarball != "" && !utils.FileExists(c.cfg.Glidein.Tarball) {
		return fmt.Errorf("%w: %s", ErrMissingTarball, c.cfg.Glidein.Tarball)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	lw := newLineWriter(file)
	if c.cfg.SubmitFile.CustomHeader != "" {
		lw.block(c.cfg.SubmitFile.CustomHeader)
	}
	lw.line("output = /dev/null")
	lw.line("error = /dev/null")
	lw.line("log = %s.log", c.cfg.SubmitFile.Filename)
	lw.line("notification = never")
	lw.line("should_transfer_files = YES")
	lw.line("when_to_transfer_output = ON_EXIT")
	lw.blank()

	lw.line("executable = %s", envWrapper)
	lw.line(`+TransferOutput = ""`)

	inputFiles := c.cfg.Glidein.Executable
	if c.cfg.Glidein.Tarball != "" {
		inputFiles += "," + c.cfg.Glidein.Tarball
	}
	lw.line("transfer_input_files = %s", inputFiles)

	if c.cfg.SubmitFile.CustomBody != "" {
		lw.block(c.cfg.SubmitFile.CustomBody)
	}

	if state.CPUs != 0 {
		lw.line("request_cpus = %d", state.CPUs)
	}
	if state.MemoryMB != 0 {
		lw.line("request_memory = %d", int64(math.Round(state.MemoryMB*requestScale)))
	}
	if state.DiskGB != 0 {
		lw.line("request_disk = %d", int64(math.Round(state.DiskGB*1024*requestScale)))
	}
	if state.GPUs != 0 {
		lw.line("request_gpus = %d", state.GPUs)
	}

	if c.cfg.SubmitFile.CustomFooter != "" {
		lw.block(c.cfg.SubmitFile.CustomFooter)
	}

	lw.line("queue")

	return lw.flush()
}

// Generate writes the env wrapper and the submit description file and
// returns the submit filename.
func (c *CondorSubmit) Generate(state State) (string, error) {
	envWrapper := c.cfg.SubmitFile.EnvWrapperName
	filename := c.cfg.SubmitFile.Filename + "." + c.cfg.Cluster.Scheduler

	if err := c.WriteEnvWrapper(envWrapper); err != nil {
		return "", err
	}
	if err := c.WriteSubmitFile(filename, envWrapper, state); err != nil {
		return "", err
	}
	utils.PrintDebug("Wrote Condor submit file %s (wrapper %s)",
		utils.StylePath(filename), utils.StylePath(envWrapper))
	return filename, nil
}

// Submit regenerates both artifacts and hands the submit file to the
// configured submit command. A nonzero exit status is fatal.
func (c *CondorSubmit) Submit(state State) error {
	filename, err := c.Generate(state)
	if err != nil {
		return err
	}
	return runSubmitCommand("HTCondor", c.cfg.Cluster.SubmitCommand, filename)
}
