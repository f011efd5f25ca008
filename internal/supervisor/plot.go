package supervisor

import (
	"errors"
	"math"
	"strconv"
)

// Plotting defaults applied when the corresponding PlotConfig field is
// left at its zero value.
const (
	DefaultKSize     = 32
	DefaultThreads   = 2
	DefaultBuckets   = 128
	DefaultMemoryMiB = 4000
)

// PlotConfig describes one plot creation run. TempDir and FinalDir are
// required; everything else falls back to the defaults above. Optional
// keys left empty are omitted from the argument list entirely.
type PlotConfig struct {
	TempDir  string
	FinalDir string

	KSize   int
	Threads int
	Buckets int

	// MemoryMiB is the plotter sort buffer size. Fractional values are
	// rounded to the nearest whole MiB when rendered.
	MemoryMiB float64

	FarmerPublicKey string
	PoolPublicKey   string

	// UseBitfield enables bitfield plotting. The default is off, which
	// passes the explicit legacy flag to the plotter.
	UseBitfield bool
}

// args renders the fixed-order plotter argument list.
func (c PlotConfig) args() ([]string, error) {
	if c.TempDir == "" {
		return nil, errors.New("plot temp dir is required")
	}
	if c.FinalDir == "" {
		return nil, errors.New("plot final dir is required")
	}

	kSize := c.KSize
	if kSize == 0 {
		kSize = DefaultKSize
	}
	threads := c.Threads
	if threads == 0 {
		threads = DefaultThreads
	}
	buckets := c.Buckets
	if buckets == 0 {
		buckets = DefaultBuckets
	}
	memory := c.MemoryMiB
	if memory == 0 {
		memory = DefaultMemoryMiB
	}

	args := []string{
		"plots", "create",
		"-k", strconv.Itoa(kSize),
		"-r", strconv.Itoa(threads),
		"-u", strconv.Itoa(buckets),
		"-b", strconv.Itoa(int(math.Round(memory))),
		"-t", c.TempDir,
		"-d", c.FinalDir,
	}
	if c.FarmerPublicKey != "" {
		args = append(args, "-f", c.FarmerPublicKey)
	}
	if c.PoolPublicKey != "" {
		args = append(args, "-p", c.PoolPublicKey)
	}
	if !c.UseBitfield {
		args = append(args, "-e")
	}
	return args, nil
}
