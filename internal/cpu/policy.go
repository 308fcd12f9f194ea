package cpu

// DefaultSysMount is where sysfs is mounted
const DefaultSysMount = "/sys"

// Policy is the cpufreq policy of one online core
type Policy struct {
	Core               int            `json:"core"`
	Driver             string         `json:"driver"`
	Governor           string         `json:"governor"`
	AvailableGovernors []string       `json:"available_governors"`
	RelatedCPUs        string         `json:"related_cpus"`
	CurFrequency       Reading[int64] `json:"cur_frequency_khz"`
	MinFrequency       Reading[int64] `json:"min_frequency_khz"`
	MaxFrequency       Reading[int64] `json:"max_frequency_khz"`
	HardwareMin        Reading[int64] `json:"hardware_min_khz"`
	HardwareMax        Reading[int64] `json:"hardware_max_khz"`
}

func kHz(v *uint64) Reading[int64] {
	if v == nil {
		return unknown[int64](0)
	}
	return known(int64(*v))
}
