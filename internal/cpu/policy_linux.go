//go:build linux

package cpu

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/procfs/sysfs"
)

// ReadPolicies lists the cpufreq policy of every online core below sysMount,
// ordered by core index. Cores without a cpufreq directory are left out.
func ReadPolicies(sysMount string) ([]Policy, error) {
	fs, err := sysfs.NewFS(sysMount)
	if err != nil {
		return nil, fmt.Errorf("failed to open sysfs at %s: %w", sysMount, err)
	}

	stats, err := fs.SystemCpufreq()
	if err != nil {
		return nil, fmt.Errorf("failed to read cpufreq policies: %w", err)
	}

	policies := make([]Policy, 0, len(stats))
	for _, s := range stats {
		core, err := strconv.Atoi(s.Name)
		if err != nil {
			continue
		}
		governors := strings.Fields(s.AvailableGovernors)
		if governors == nil {
			governors = []string{}
		}
		policies = append(policies, Policy{
			Core:               core,
			Driver:             s.Driver,
			Governor:           s.Governor,
			AvailableGovernors: governors,
			RelatedCPUs:        s.RelatedCpus,
			CurFrequency:       kHz(s.ScalingCurrentFrequency),
			MinFrequency:       kHz(s.ScalingMinimumFrequency),
			MaxFrequency:       kHz(s.ScalingMaximumFrequency),
			HardwareMin:        kHz(s.CpuinfoMinimumFrequency),
			HardwareMax:        kHz(s.CpuinfoMaximumFrequency),
		})
	}

	if len(policies) == 0 {
		return nil, fmt.Errorf("no cpufreq policies below %s", sysMount)
	}

	slices.SortFunc(policies, func(a, b Policy) int { return a.Core - b.Core })
	return policies, nil
}
