package api

import (
	"context"
	"strconv"
	"time"

	"github.com/CristiGvl/cpurun/internal/cpu"
	"github.com/gofiber/fiber/v2"
)

// CPUResponse is the body of GET /api/cpu
type CPUResponse struct {
	*cpu.Info
	Model *cpu.Model `json:"model,omitempty"`
}

// CPU endpoint
func (s *Server) getCPU(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	resp := CPUResponse{Info: s.cpuReader.Snapshot()}

	model, err := cpu.ReadModel(ctx)
	if err != nil {
		s.log.V(1).Info("Processor model unavailable", "error", err.Error())
	} else {
		resp.Model = model
	}

	return c.JSON(resp)
}

func (s *Server) getCores(c *fiber.Ctx) error {
	cores := s.cpuReader.NumCores()
	return c.JSON(fiber.Map{
		"cores":     cores.Value,
		"known":     cores.Known,
		"is_64_bit": s.cpuReader.Is64Bit(),
	})
}

func (s *Server) getFrequency(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"max_khz":       s.cpuReader.MaxFrequency(),
		"min_khz":       s.cpuReader.MinFrequency(),
		"available_khz": s.cpuReader.AvailableFrequencies(),
		"available_raw": s.cpuReader.AvailableFrequenciesRaw(),
	})
}

func (s *Server) getGovernor(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"governor":      s.cpuReader.Governor(),
		"available":     s.cpuReader.AvailableGovernors(),
		"available_raw": s.cpuReader.AvailableGovernorsRaw(),
	})
}

// Per-core current frequency endpoint. The core count defaults to the
// enumerated one and the template to the server's.
func (s *Server) getCurrentFrequencies(c *fiber.Ctx) error {
	coreCount := s.cpuReader.NumCores().Value
	if raw := c.Query("cores"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > cpu.MaxCores {
			return c.Status(400).JSON(fiber.Map{"error": "invalid core count"})
		}
		coreCount = n
	}

	format := c.Query("format", s.format)
	entries := s.cpuReader.CoreFrequencies(coreCount)

	return c.JSON(fiber.Map{
		"cores":     coreCount,
		"formatted": cpu.FormatFrequencies(entries, format),
		"entries":   entries,
	})
}

// cpufreq policies of the online cores
func (s *Server) getPolicies(c *fiber.Ctx) error {
	policies, err := cpu.ReadPolicies(s.sysMount)
	if err != nil {
		s.log.Error(err, "Failed to read cpufreq policies", "mount", s.sysMount)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cpufreq policies unavailable"})
	}
	return c.JSON(fiber.Map{"policies": policies})
}
