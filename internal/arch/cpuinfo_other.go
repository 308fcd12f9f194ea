//go:build !linux

package arch

// CPUInfo always reports false where there is no /proc/cpuinfo
func CPUInfo(procRoot string) Probe {
	return func() bool { return false }
}
