package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	maxFreqPath        = "cpu0/cpufreq/cpuinfo_max_freq"
	minFreqPath        = "cpu0/cpufreq/cpuinfo_min_freq"
	availFreqsPath     = "cpu0/cpufreq/scaling_available_frequencies"
	governorPath       = "cpu0/cpufreq/scaling_governor"
	availGovernorsPath = "cpu0/cpufreq/scaling_available_governors"
)

var (
	coreDirRe = regexp.MustCompile(`^cpu[0-9]+$`)

	errNoLine = errors.New("file has no first line")
)

func curFreqPath(core int) string {
	return path.Join(fmt.Sprintf("cpu%d", core), "cpufreq", "scaling_cur_freq")
}

// NumCores counts the entries of the CPU root named "cpu" followed by digits.
// If the root cannot be listed the count defaults to 1.
func (r *Reader) NumCores() Reading[int] {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		r.logger.Error(err, "Failed to count number of cores, defaulting to 1", "root", r.root)
		return unknown(1)
	}

	count := 0
	for _, entry := range entries {
		if coreDirRe.MatchString(entry.Name()) {
			count++
		}
	}
	return known(count)
}

// Is64Bit reports whether any of the configured architecture probes says so
func (r *Reader) Is64Bit() bool {
	for _, probe := range r.probes {
		if probe() {
			return true
		}
	}
	return false
}

// MaxFrequency returns cpuinfo_max_freq of cpu0 in kHz
func (r *Reader) MaxFrequency() Reading[int64] {
	return r.readKHz(maxFreqPath)
}

// MinFrequency returns cpuinfo_min_freq of cpu0 in kHz
func (r *Reader) MinFrequency() Reading[int64] {
	return r.readKHz(minFreqPath)
}

// AvailableFrequenciesRaw returns the scaling_available_frequencies line as is
func (r *Reader) AvailableFrequenciesRaw() Reading[string] {
	return r.readLine(availFreqsPath)
}

// AvailableFrequencies parses scaling_available_frequencies. A single
// malformed token discards the whole list.
func (r *Reader) AvailableFrequencies() Reading[[]int64] {
	line := r.readLine(availFreqsPath)
	if !line.Known {
		return unknown([]int64{})
	}

	fields := strings.Fields(line.Value)
	freqs := make([]int64, 0, len(fields))
	for _, field := range fields {
		freq, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			r.logger.V(1).Info("Discarding available frequencies", "path", availFreqsPath, "token", field, "error", err.Error())
			return unknown([]int64{})
		}
		freqs = append(freqs, freq)
	}
	return known(freqs)
}

// Governor returns the scaling_governor of cpu0
func (r *Reader) Governor() Reading[string] {
	return r.readLine(governorPath)
}

// AvailableGovernorsRaw returns the scaling_available_governors line as is
func (r *Reader) AvailableGovernorsRaw() Reading[string] {
	return r.readLine(availGovernorsPath)
}

// AvailableGovernors splits scaling_available_governors on whitespace
func (r *Reader) AvailableGovernors() Reading[[]string] {
	line := r.readLine(availGovernorsPath)
	if !line.Known {
		return unknown([]string{})
	}
	governors := strings.Fields(line.Value)
	if governors == nil {
		governors = []string{}
	}
	return known(governors)
}

// CoreFrequencies reads scaling_cur_freq for cores 0..coreCount-1. Cores whose
// file cannot be read are left out, so the result may be shorter than
// coreCount. Index order is preserved. coreCount is capped at MaxCores.
func (r *Reader) CoreFrequencies(coreCount int) []CoreFrequency {
	freqs := []CoreFrequency{}
	for i := 0; i < min(coreCount, MaxCores); i++ {
		line := r.readLine(curFreqPath(i))
		if !line.Known {
			continue
		}
		freqs = append(freqs, CoreFrequency{Index: i, Raw: line.Value})
	}
	return freqs
}

// CurrentFrequencies formats each readable core with format, which receives
// the core index and the raw kHz line (e.g. DefaultCurFreqFormat).
func (r *Reader) CurrentFrequencies(coreCount int, format string) []string {
	return FormatFrequencies(r.CoreFrequencies(coreCount), format)
}

// FormatFrequencies renders each entry through format
func FormatFrequencies(freqs []CoreFrequency, format string) []string {
	result := make([]string, 0, len(freqs))
	for _, f := range freqs {
		result = append(result, fmt.Sprintf(format, f.Index, f.Raw))
	}
	return result
}

// Snapshot takes every reading once
func (r *Reader) Snapshot() *Info {
	cores := r.NumCores()

	return &Info{
		Cores:                  cores,
		Is64Bit:                r.Is64Bit(),
		MaxFrequency:           r.MaxFrequency(),
		MinFrequency:           r.MinFrequency(),
		AvailableFrequencies:   r.AvailableFrequencies(),
		AvailableFrequencyLine: r.AvailableFrequenciesRaw(),
		Governor:               r.Governor(),
		AvailableGovernors:     r.AvailableGovernors(),
		AvailableGovernorLine:  r.AvailableGovernorsRaw(),
		CurrentFrequencies:     r.CoreFrequencies(cores.Value),
		CollectedAt:            time.Now(),
	}
}

// readKHz parses the first line of name as a kHz value
func (r *Reader) readKHz(name string) Reading[int64] {
	line := r.readLine(name)
	if !line.Known {
		return unknown(int64(0))
	}

	khz, err := strconv.ParseInt(line.Value, 10, 64)
	if err != nil {
		r.logger.V(1).Info("Invalid frequency value", "path", name, "error", err.Error())
		return unknown(int64(0))
	}
	return known(khz)
}

// readLine returns the first line of name without its line terminator
func (r *Reader) readLine(name string) Reading[string] {
	line, err := firstLine(r.fsys, name)
	if err != nil {
		r.logger.V(1).Info("Failed to read sysfs attribute", "root", r.root, "path", name, "error", err.Error())
		return unknown("")
	}
	return known(line)
}

func firstLine(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", errNoLine
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
