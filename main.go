package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CristiGvl/cpurun/api"
	"github.com/CristiGvl/cpurun/internal/arch"
	"github.com/CristiGvl/cpurun/internal/config"
	"github.com/CristiGvl/cpurun/internal/cpu"
	"github.com/CristiGvl/cpurun/internal/logging"
	"github.com/CristiGvl/cpurun/internal/platform"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpurun: %v\n", err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpurun: %v\n", err)
		os.Exit(2)
	}

	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		log.Error(err, "Platform validation failed")
		os.Exit(1)
	}

	reader := cpu.NewReader(
		cpu.WithRoot(cfg.SysfsRoot),
		cpu.WithLogger(log.WithName("sysfs")),
		cpu.WithArchProbes(arch.KernelArch(), arch.CPUInfo(cfg.ProcRoot)),
	)

	if cfg.Dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reader.Snapshot()); err != nil {
			log.Error(err, "Failed to write snapshot")
			os.Exit(1)
		}
		return
	}

	server := api.NewServer(reader, cfg.SysMount, cfg.CurFreqFormat, log)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		if err := server.Shutdown(); err != nil {
			log.Error(err, "Error during shutdown")
		}
		os.Exit(0)
	}()

	if err := server.Start(cfg.Address()); err != nil {
		log.Error(err, "Server stopped")
		os.Exit(1)
	}
}
