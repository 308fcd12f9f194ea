//go:build linux

package arch

import (
	"slices"
	"strings"

	"github.com/prometheus/procfs"
)

// CPUInfo inspects <procRoot>/cpuinfo. It is 64-bit evidence when a
// processor carries the x86 "lm" (long mode) flag or its model names AArch64.
func CPUInfo(procRoot string) Probe {
	return func() (is64 bool) {
		// procfs indexes the ARM Features line without checking it exists
		defer func() {
			if recover() != nil {
				is64 = false
			}
		}()

		fs, err := procfs.NewFS(procRoot)
		if err != nil {
			return false
		}
		cpuInfo, err := fs.CPUInfo()
		if err != nil {
			return false
		}

		for _, info := range cpuInfo {
			if slices.Contains(info.Flags, "lm") {
				return true
			}
			model := strings.ToLower(info.ModelName)
			if strings.Contains(model, "aarch64") || strings.Contains(model, "arm64") {
				return true
			}
		}
		return false
	}
}
