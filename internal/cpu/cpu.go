package cpu

import (
	"io/fs"
	"os"
	"time"

	"github.com/CristiGvl/cpurun/internal/arch"
	"github.com/go-logr/logr"
)

// DefaultRoot is the kernel's CPU sysfs directory
const DefaultRoot = "/sys/devices/system/cpu"

// MaxCores is the largest core count the kernel can be built for
// (CONFIG_NR_CPUS)
const MaxCores = 8192

// DefaultCurFreqFormat is the display template used for per-core frequencies.
// It receives the core index and the raw kHz line.
const DefaultCurFreqFormat = "cpu%d: %s kHz"

// Reading is a value read from sysfs. When Known is false the attribute could
// not be read or parsed and Value holds the default for its type.
type Reading[T any] struct {
	Value T    `json:"value"`
	Known bool `json:"known"`
}

func known[T any](v T) Reading[T] {
	return Reading[T]{Value: v, Known: true}
}

func unknown[T any](v T) Reading[T] {
	return Reading[T]{Value: v}
}

// CoreFrequency is the raw scaling_cur_freq line of one core
type CoreFrequency struct {
	Index int    `json:"index"`
	Raw   string `json:"raw_khz"`
}

// Info represents every CPU reading taken at one point in time
type Info struct {
	Cores                  Reading[int]      `json:"cores"`
	Is64Bit                bool              `json:"is_64_bit"`
	MaxFrequency           Reading[int64]    `json:"max_frequency_khz"`
	MinFrequency           Reading[int64]    `json:"min_frequency_khz"`
	AvailableFrequencies   Reading[[]int64]  `json:"available_frequencies_khz"`
	AvailableFrequencyLine Reading[string]   `json:"available_frequencies_raw"`
	Governor               Reading[string]   `json:"governor"`
	AvailableGovernors     Reading[[]string] `json:"available_governors"`
	AvailableGovernorLine  Reading[string]   `json:"available_governors_raw"`
	CurrentFrequencies     []CoreFrequency   `json:"current_frequencies"`
	CollectedAt            time.Time         `json:"collected_at"`
}

// Reader reads CPU attributes below a sysfs CPU root. A Reader holds only
// immutable configuration and is safe for concurrent use.
type Reader struct {
	root   string
	fsys   fs.FS
	logger logr.Logger
	probes []arch.Probe
}

// Option configures a Reader
type Option func(*Reader)

// WithRoot reads from the given directory instead of DefaultRoot
func WithRoot(root string) Option {
	return func(r *Reader) {
		r.root = root
		r.fsys = os.DirFS(root)
	}
}

// WithFS reads from fsys. Paths inside fsys are relative to the CPU root,
// e.g. "cpu0/cpufreq/scaling_governor".
func WithFS(fsys fs.FS) Option {
	return func(r *Reader) {
		r.root = "fs"
		r.fsys = fsys
	}
}

// WithLogger sets the logger diagnostics are written to
func WithLogger(logger logr.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithArchProbes replaces the probes consulted by Is64Bit
func WithArchProbes(probes ...arch.Probe) Option {
	return func(r *Reader) {
		r.probes = probes
	}
}

// NewReader creates a Reader over DefaultRoot unless an option says otherwise
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		root:   DefaultRoot,
		fsys:   os.DirFS(DefaultRoot),
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.probes == nil {
		r.probes = arch.Default()
	}
	return r
}

var std = NewReader()

// NumCores counts the CPU cores of the running system
func NumCores() Reading[int] { return std.NumCores() }

// Is64Bit reports whether the running system is 64-bit
func Is64Bit() bool { return std.Is64Bit() }

// MaxFrequency returns cpu0's maximum frequency in kHz
func MaxFrequency() Reading[int64] { return std.MaxFrequency() }

// MinFrequency returns cpu0's minimum frequency in kHz
func MinFrequency() Reading[int64] { return std.MinFrequency() }

// AvailableFrequencies returns cpu0's selectable frequencies in kHz
func AvailableFrequencies() Reading[[]int64] { return std.AvailableFrequencies() }

// AvailableFrequenciesRaw returns cpu0's selectable frequencies line unparsed
func AvailableFrequenciesRaw() Reading[string] { return std.AvailableFrequenciesRaw() }

// Governor returns cpu0's scaling governor
func Governor() Reading[string] { return std.Governor() }

// AvailableGovernors returns the governors cpu0 can switch to
func AvailableGovernors() Reading[[]string] { return std.AvailableGovernors() }

// AvailableGovernorsRaw returns cpu0's available governors line unparsed
func AvailableGovernorsRaw() Reading[string] { return std.AvailableGovernorsRaw() }

// CoreFrequencies reads the current frequency of each core
func CoreFrequencies(coreCount int) []CoreFrequency { return std.CoreFrequencies(coreCount) }

// CurrentFrequencies formats the current frequency of each core
func CurrentFrequencies(coreCount int, format string) []string {
	return std.CurrentFrequencies(coreCount, format)
}
