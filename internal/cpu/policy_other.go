//go:build !linux

package cpu

import "errors"

// ReadPolicies is only implemented on linux
func ReadPolicies(sysMount string) ([]Policy, error) {
	return nil, errors.New("cpufreq policies are not available on this platform")
}
