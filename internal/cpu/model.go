package cpu

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Model describes the processor package
type Model struct {
	Name        string `json:"model"`
	Vendor      string `json:"vendor"`
	LogicalCPUs int    `json:"logical_cpus"`
}

// ReadModel returns the processor model as reported by /proc/cpuinfo
func ReadModel(ctx context.Context) (*Model, error) {
	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu info: %w", err)
	}
	if len(cpuInfo) == 0 {
		return nil, fmt.Errorf("no processors reported")
	}

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		logical = len(cpuInfo) // one InfoStat per logical CPU on linux
	}

	return &Model{
		Name:        cpuInfo[0].ModelName,
		Vendor:      cpuInfo[0].VendorID,
		LogicalCPUs: logical,
	}, nil
}
