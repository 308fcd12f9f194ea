// Package arch detects whether the running system is 64-bit.
package arch

import (
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// DefaultProcRoot is where the proc filesystem is mounted
const DefaultProcRoot = "/proc"

// Probe reports whether one source of evidence says the system is 64-bit
type Probe func() bool

// Default returns the kernel architecture probe followed by the
// /proc/cpuinfo probe
func Default() []Probe {
	return []Probe{KernelArch(), CPUInfo(DefaultProcRoot)}
}

// KernelArch inspects the machine architecture string reported by uname
func KernelArch() Probe {
	return func() bool {
		machine, err := host.KernelArch()
		if err != nil {
			return false
		}
		return Is64BitArch(machine)
	}
}

// Is64BitArch reports whether a uname machine string names a 64-bit
// architecture
func Is64BitArch(machine string) bool {
	machine = strings.ToLower(strings.TrimSpace(machine))
	switch {
	case machine == "":
		return false
	case strings.Contains(machine, "64"):
		return true
	case machine == "s390x":
		return true
	}
	return false
}
