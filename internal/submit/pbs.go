package submit

import (
	"os"
	"path/filepath"

	"github.com/javierggt/pyglidein/internal/config"
	"github.com/javierggt/pyglidein/internal/utils"
)

// gpuMemoryScale reconciles the base-10 vs base-2 memory unit mismatch
// between the scheduler families: memory directives and exports for GPU jobs
// are inflated by 10%.
const gpuMemoryScale = 1.1

// PBSSubmit generates a Torque/PBS batch script for a resource request and
// submits it with the configured qsub command.
type PBSSubmit struct {
	cfg *config.ClusterConfig
}

// NewPBSSubmit creates a PBS submitter for the given cluster config.
func NewPBSSubmit(cfg *config.ClusterConfig) *PBSSubmit {
	return &PBSSubmit{cfg: cfg}
}

// normalize resolves the CPU count and effective memory for a request.
//
// For CPU-only jobs the core count is raised to the smallest value whose
// combined per-core memory allowance covers the request, and the effective
// memory is rounded up to that allowance. GPU jobs keep both values as
// requested: the per-core inflation rule does not apply to them.
func (p *PBSSubmit) normalize(state State) (cpus int, memMB float64) {
	cpus = state.CPUs
	memMB = state.MemoryMB

	if state.GPUs == 0 {
		for memMB > p.cfg.Cluster.MemPerCore*float64(cpus) {
			cpus++
		}
		if float64(cpus)*p.cfg.Cluster.MemPerCore >= memMB {
			memMB = float64(cpus) * p.cfg.Cluster.MemPerCore
		}
	}

	// A chunk needs at least one core to run on.
	if cpus < 1 {
		cpus = 1
	}

	return cpus, memMB
}

// writeHeader emits the shebang and the #PBS directive block.
func (p *PBSSubmit) writeHeader(lw *lineWriter, cpus int, memMB float64, state State) {
	lw.line("#!/bin/bash")

	if state.GPUs == 0 {
		lw.line("#PBS -l nodes=1:ppn=%d", cpus)
	} else {
		lw.line("#PBS -l nodes=1:ppn=%d:gpus=%d", cpus, state.GPUs)
	}

	perCoreMB := memMB / float64(cpus)
	if state.GPUs > 0 {
		perCoreMB *= gpuMemoryScale
	}
	lw.line("#PBS -l mem=%dmb,pmem=%dmb", int(perCoreMB), int(perCoreMB))

	lw.line("#PBS -l walltime=%d:00:00", p.cfg.Cluster.WalltimeHrs)
	if p.cfg.Cluster.Account != "" {
		lw.line("#PBS -A %s", p.cfg.Cluster.Account)
	}
	lw.line("#PBS -o $HOME/glidein/out/${PBS_JOBID}.out")
	lw.line("#PBS -e $HOME/glidein/out/${PBS_JOBID}.err")
}

// writeEnvVars emits the export block the glidein startup script reads.
func (p *PBSSubmit) writeEnvVars(lw *lineWriter, cpus int, memMB float64, state State) {
	memExport := memMB
	if state.GPUs > 0 {
		memExport *= gpuMemoryScale
	}
	lw.line("export MEMORY=%d", int(memExport))
	lw.line("export CPUS=%d", cpus)
	if state.GPUs > 0 {
		// PBS hands out bare device ids; the glidein parser expects the
		// CUDA prefix HTCondor uses.
		lw.line("export GPUS=$CUDA_VISIBLE_DEVICES")
		lw.line(`export GPUS="CUDA$GPUS"`)
	}
	lw.line("export CVMFS=%t", state.CVMFS)
	for _, k := range sortedEnvKeys(p.cfg.CustomEnv) {
		lw.line("export %s=%s", k, p.cfg.CustomEnv[k])
	}
	lw.blank()
}

// writeGlideinPart emits the staging commands: enter the local scratch
// directory, link the glidein artifacts into it, and start the glidein.
func (p *PBSSubmit) writeGlideinPart(lw *lineWriter) {
	lw.line("cd %s", p.cfg.SubmitFile.LocalDir)
	lw.blank()

	script := filepath.Base(p.cfg.Glidein.Executable)
	if p.cfg.Glidein.Tarball != "" {
		tarball := filepath.Base(p.cfg.Glidein.Tarball)
		lw.line("ln -s %s %s", filepath.Join(p.cfg.Glidein.Loc, tarball), tarball)
	}
	lw.line("ln -s %s %s", filepath.Join(p.cfg.Glidein.Loc, script), script)
	lw.line("./%s", script)
}

// WriteSubmitFile writes the complete PBS batch script for state to filename,
// overwriting any previous file.
func (p *PBSSubmit) WriteSubmitFile(filename string, state State) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	cpus, memMB := p.normalize(state)

	lw := newLineWriter(file)
	p.writeHeader(lw, cpus, memMB, state)
	if p.cfg.SubmitFile.CustomHeader != "" {
		lw.block(p.cfg.SubmitFile.CustomHeader)
	}
	if p.cfg.SubmitFile.CustomMiddle != "" {
		lw.block(p.cfg.SubmitFile.CustomMiddle)
	}
	p.writeEnvVars(lw, cpus, memMB, state)
	p.writeGlideinPart(lw)
	if p.cfg.SubmitFile.CustomEnd != "" {
		lw.block(p.cfg.SubmitFile.CustomEnd)
	}

	return lw.flush()
}

// Generate writes the batch script and returns its filename.
func (p *PBSSubmit) Generate(state State) (string, error) {
	filename := p.cfg.SubmitFile.Filename + "." + p.cfg.Cluster.Scheduler
	if err := p.WriteSubmitFile(filename, state); err != nil {
		return "", err
	}
	utils.PrintDebug("Wrote PBS submit file %s", utils.StylePath(filename))
	return filename, nil
}

// Submit writes the batch script and hands it to the configured submit
// command. A nonzero exit status is fatal; nothing is retried.
func (p *PBSSubmit) Submit(state State) error {
	filename, err := p.Generate(state)
	if err != nil {
		return err
	}
	return runSubmitCommand("PBS", p.cfg.Cluster.SubmitCommand, filename)
}
