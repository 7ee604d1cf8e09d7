package submit

// State is the declarative resource request for a single glidein submission.
// It is immutable input: generators never write back into it.
type State struct {
	CPUs     int     // Requested CPU cores
	MemoryMB float64 // Requested memory in MB
	DiskGB   float64 // Requested scratch disk in GB
	GPUs     int     // Requested GPUs
	CVMFS    bool    // Whether the site provides CVMFS
}
