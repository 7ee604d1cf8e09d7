package submit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javierggt/pyglidein/internal/config"
)

// newCondorTestConfig builds a condor config whose glidein artifacts exist
// in a temp directory.
func newCondorTestConfig(t *testing.T) *config.ClusterConfig {
	t.Helper()
	dir := t.TempDir()
	exe := filepath.Join(dir, "glidein_start.sh")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig("condor")
	cfg.Cluster.SubmitCommand = "condor_submit"
	cfg.Glidein.Executable = exe
	cfg.Glidein.Loc = dir
	return cfg
}

func writeCondorFile(t *testing.T, cfg *config.ClusterConfig, state State) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submit.condor")
	condor := NewCondorSubmit(cfg)
	if err := condor.WriteSubmitFile(path, "env_wrapper.sh", state); err != nil {
		t.Fatalf("WriteSubmitFile failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read submit file: %v", err)
	}
	return string(content)
}

func TestCondorRequestDirectives(t *testing.T) {
	cfg := newCondorTestConfig(t)
	state := State{CPUs: 1, MemoryMB: 2000, DiskGB: 2.5, GPUs: 2}

	content := writeCondorFile(t, cfg, state)

	for _, want := range []string{
		"request_cpus = 1\n",
		"request_memory = 2200\n", // 2000 * 1.1
		"request_disk = 2816\n",   // 2.5 GB * 1024 * 1.1
		"request_gpus = 2\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in submit file:\n%s", want, content)
		}
	}
}

func TestCondorOmitsZeroRequests(t *testing.T) {
	cfg := newCondorTestConfig(t)
	content := writeCondorFile(t, cfg, State{})

	if strings.Contains(content, "request_") {
		t.Errorf("Zero-valued requests must be omitted:\n%s", content)
	}
	if !strings.HasSuffix(content, "queue\n") {
		t.Errorf("Submit file must end with the queue directive:\n%s", content)
	}
}

func TestCondorBoilerplateAndTransfer(t *testing.T) {
	cfg := newCondorTestConfig(t)
	content := writeCondorFile(t, cfg, State{CPUs: 1})

	for _, want := range []string{
		"output = /dev/null\n",
		"error = /dev/null\n",
		"log = submit.log\n",
		"notification = never\n",
		"should_transfer_files = YES\n",
		"when_to_transfer_output = ON_EXIT\n",
		"executable = env_wrapper.sh\n",
		"+TransferOutput = \"\"\n",
		"transfer_input_files = " + cfg.Glidein.Executable + "\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in submit file:\n%s", want, content)
		}
	}
}

func TestCondorTarballInTransferList(t *testing.T) {
	cfg := newCondorTestConfig(t)
	tarball := filepath.Join(filepath.Dir(cfg.Glidein.Executable), "glidein.tar.gz")
	if err := os.WriteFile(tarball, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Glidein.Tarball = tarball

	content := writeCondorFile(t, cfg, State{CPUs: 1})

	want := "transfer_input_files = " + cfg.Glidein.Executable + "," + tarball + "\n"
	if !strings.Contains(content, want) {
		t.Errorf("Expected %q in submit file:\n%s", want, content)
	}
}

func TestCondorMissingExecutable(t *testing.T) {
	cfg := newCondorTestConfig(t)
	cfg.Glidein.Executable = filepath.Join(t.TempDir(), "does_not_exist.sh")

	path := filepath.Join(t.TempDir(), "submit.condor")
	condor := NewCondorSubmit(cfg)
	err := condor.WriteSubmitFile(path, "env_wrapper.sh", State{CPUs: 1})

	if !errors.Is(err, ErrMissingExecutable) {
		t.Fatalf("err = %v; want ErrMissingExecutable", err)
	}
	// Nothing may be written when the precondition fails.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("Submit file should not exist after precondition failure")
	}
}

func TestCondorMissingTarball(t *testing.T) {
	cfg := newCondorTestConfig(t)
	cfg.Glidein.Tarball = filepath.Join(t.TempDir(), "does_not_exist.tar.gz")

	condor := NewCondorSubmit(cfg)
	err := condor.WriteSubmitFile(filepath.Join(t.TempDir(), "submit.condor"), "env_wrapper.sh", State{CPUs: 1})

	if !errors.Is(err, ErrMissingTarball) {
		t.Fatalf("err = %v; want ErrMissingTarball", err)
	}
}

func TestCondorCustomBlockOrder(t *testing.T) {
	cfg := newCondorTestConfig(t)
	cfg.SubmitFile.CustomHeader = "# site header"
	cfg.SubmitFile.CustomBody = "+ProjectName = \"icecube\""
	cfg.SubmitFile.CustomFooter = "periodic_remove = JobStatus == 5"

	content := writeCondorFile(t, cfg, State{CPUs: 1})

	ih := strings.Index(content, "# site header")
	ib := strings.Index(content, "+ProjectName")
	ir := strings.Index(content, "request_cpus")
	ifo := strings.Index(content, "periodic_remove")
	iq := strings.Index(content, "\nqueue\n")
	if ih < 0 || ib < 0 || ir < 0 || ifo < 0 || iq < 0 {
		t.Fatalf("Missing expected sections in submit file:\n%s", content)
	}
	if !(ih < ib && ib < ir && ir < ifo && ifo < iq) {
		t.Errorf("Sections out of order (header < body < requests < footer < queue):\n%s", content)
	}
}

func TestCondorEnvWrapperContent(t *testing.T) {
	cfg := newCondorTestConfig(t)
	cfg.CustomEnv = map[string]string{"SITE": "testsite", "CLUSTER": "testcluster"}

	path := filepath.Join(t.TempDir(), "env_wrapper.sh")
	condor := NewCondorSubmit(cfg)
	if err := condor.WriteEnvWrapper(path); err != nil {
		t.Fatalf("WriteEnvWrapper failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	wrapper := string(content)

	for _, want := range []string{
		"#!/bin/sh\n",
		`CPUS=$(grep -e "^Cpus" $_CONDOR_MACHINE_AD | awk '{print $3}')`,
		`MEMORY=$(grep -e "^Memory" $_CONDOR_MACHINE_AD | awk '{print $3}')`,
		`DISK=$(grep -e "^Disk" $_CONDOR_MACHINE_AD | awk '{print $3}')`,
		`GPUS=$(grep -e "^AssignedGPUs" $_CONDOR_MACHINE_AD | awk '{print $3}' | sed -e 's/"//g')`,
		"10000|CUDA10000)",
		"''|*[!0-9]*)",
		`GPUS="CUDA$GPUS"`,
		"exec env -i CPUS=$CPUS GPUS=$GPUS MEMORY=$MEMORY DISK=$DISK CLUSTER=testcluster SITE=testsite ./glidein_start.sh\n",
	} {
		if !strings.Contains(wrapper, want) {
			t.Errorf("Expected %q in wrapper:\n%s", want, wrapper)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0111 == 0 {
		t.Errorf("Wrapper should be executable, mode = %v", info.Mode())
	}
}

func TestCondorWrapperSanitizationOrder(t *testing.T) {
	cfg := newCondorTestConfig(t)
	path := filepath.Join(t.TempDir(), "env_wrapper.sh")
	condor := NewCondorSubmit(cfg)
	if err := condor.WriteEnvWrapper(path); err != nil {
		t.Fatalf("WriteEnvWrapper failed: %v", err)
	}
	content, _ := os.ReadFile(path)
	wrapper := string(content)

	// The sentinel branch must come before the non-numeric branch so that
	// CUDA10000 maps to 0 instead of "".
	sentinel := strings.Index(wrapper, "10000|CUDA10000)")
	nonNumeric := strings.Index(wrapper, "''|*[!0-9]*)")
	if sentinel < 0 || nonNumeric < 0 || sentinel > nonNumeric {
		t.Errorf("Sentinel case must precede the non-numeric case:\n%s", wrapper)
	}
}

func TestCondorIdempotentOutput(t *testing.T) {
	cfg := newCondorTestConfig(t)
	cfg.CustomEnv = map[string]string{"B": "2", "A": "1", "C": "3"}
	state := State{CPUs: 2, MemoryMB: 3000, DiskGB: 4, GPUs: 1}

	condor := NewCondorSubmit(cfg)
	dir := t.TempDir()
	for _, name := range []string{"wrap_a.sh", "wrap_b.sh"} {
		if err := condor.WriteEnvWrapper(filepath.Join(dir, name)); err != nil {
			t.Fatalf("WriteEnvWrapper failed: %v", err)
		}
	}
	wa, _ := os.ReadFile(filepath.Join(dir, "wrap_a.sh"))
	wb, _ := os.ReadFile(filepath.Join(dir, "wrap_b.sh"))
	if !bytes.Equal(wa, wb) {
		t.Errorf("Wrapper generation should be byte-identical")
	}

	for _, name := range []string{"sub_a.condor", "sub_b.condor"} {
		if err := condor.WriteSubmitFile(filepath.Join(dir, name), "env_wrapper.sh", state); err != nil {
			t.Fatalf("WriteSubmitFile failed: %v", err)
		}
	}
	sa, _ := os.ReadFile(filepath.Join(dir, "sub_a.condor"))
	sb, _ := os.ReadFile(filepath.Join(dir, "sub_b.condor"))
	if !bytes.Equal(sa, sb) {
		t.Errorf("Submit file generation should be byte-identical")
	}
}

func TestCondorGenerateWritesBothArtifacts(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := newCondorTestConfig(t)
	condor := NewCondorSubmit(cfg)
	filename, err := condor.Generate(State{CPUs: 1, MemoryMB: 2000})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if filename != "submit.condor" {
		t.Errorf("filename = %q; want %q", filename, "submit.condor")
	}
	for _, f := range []string{"submit.condor", "env_wrapper.sh"} {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("Expected %s to exist: %v", f, err)
		}
	}
}
