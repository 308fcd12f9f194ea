// Package config loads cpurun settings from .env, the environment and flags.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/CristiGvl/cpurun/internal/arch"
	"github.com/CristiGvl/cpurun/internal/cpu"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var validate = validator.New()

// Config holds the settings of one cpurun process
type Config struct {
	Bind          string `validate:"required,ip"`
	Port          int    `validate:"min=1,max=65535"`
	SysfsRoot     string `validate:"required"`
	SysMount      string `validate:"required"`
	ProcRoot      string `validate:"required"`
	CurFreqFormat string `validate:"required"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFormat     string `validate:"oneof=json console"`
	Dump          bool
}

// Address returns the listen address of the HTTP server
func (c *Config) Address() string {
	return c.Bind + ":" + strconv.Itoa(c.Port)
}

// Load builds the configuration from .env, the environment and args, in
// increasing order of precedence.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	port := 8080
	if raw := os.Getenv("CPURUN_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CPURUN_PORT %q: %w", raw, err)
		}
		port = p
	}

	cfg := &Config{}

	flagSet := pflag.NewFlagSet("cpurun", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&cfg.Bind, "bind", getEnv("CPURUN_BIND", "0.0.0.0"), "IP address to bind the server to")
	flagSet.IntVar(&cfg.Port, "port", port, "Port to run the server on")
	flagSet.StringVar(&cfg.SysfsRoot, "sysfs-root", getEnv("CPURUN_SYSFS_CPU_ROOT", cpu.DefaultRoot), "CPU sysfs directory")
	flagSet.StringVar(&cfg.SysMount, "sys-mount", getEnv("CPURUN_SYS_MOUNT", cpu.DefaultSysMount), "sysfs mount point used for cpufreq policies")
	flagSet.StringVar(&cfg.ProcRoot, "proc-root", getEnv("CPURUN_PROC_ROOT", arch.DefaultProcRoot), "procfs mount point used for 64-bit detection")
	flagSet.StringVar(&cfg.CurFreqFormat, "format", getEnv("CPURUN_CURFREQ_FORMAT", cpu.DefaultCurFreqFormat), "Display template for per-core frequencies (core index, raw kHz)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", getEnv("CPURUN_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	flagSet.StringVar(&cfg.LogFormat, "log-format", getEnv("CPURUN_LOG_FORMAT", "json"), "Log format: json or console")
	flagSet.BoolVar(&cfg.Dump, "dump", false, "Print one JSON snapshot and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", describe(err))
	}

	return cfg, nil
}

// describe flattens validation errors into one line
func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	var msgs []string
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between 1 and 65535", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
