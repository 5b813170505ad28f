// Command so24b boots the kernel against a minimal, CPU-free machine: a flat
// memory bus, a file-backed program loader, and a software clock that the
// driver loop advances instead of a real instruction fetch cycle. It loads a
// YAML configuration file and delivers clock interrupts until the kernel
// first returns halt (every process dead, nothing runnable, or a fatal
// error) or the interrupt bound is reached. The kernel itself writes the
// metrics report to the configured path once every process has died.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lucasbsribeiro/so24b"
)

// memoryWords bounds the flat address space the machine presents to the
// kernel and every guest program.
const memoryWords = 1 << 16

func main() {
	configPath := flag.String("config", "so24b.yaml", "path to the kernel's YAML configuration file")
	programsDir := flag.String("programs", ".", "directory containing trata_int.maq, init.maq, and any program SO_CRIA_PROC may load")
	maxInterrupts := flag.Int("max-interrupts", 1_000_000, "safety bound on interrupts serviced before giving up")
	flag.Parse()

	cfg, err := so.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "so24b: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("config_path", *configPath),
		slog.String("escalonador", cfg.Policy),
		slog.Int("quantum", cfg.Quantum),
		slog.Int("max_processos", cfg.MaxProcesses),
	)

	bus := newMemoryBus(memoryWords)
	clock := &softwareClock{}
	io := so.RegisterIOBus{Bus: bus}
	loader := newFileLoader(*programsDir)

	kernel, err := so.New(bus, io, clock, loader, logger, *cfg)
	if err != nil {
		logger.Error("kernel construction failed", slog.Any("error", err))
		os.Exit(1)
	}

	halt := kernel.HandleInterrupt(so.IRQReset)
	irq := so.IRQClock
	for i := 0; halt == 0 && i < *maxInterrupts; i++ {
		clock.Advance(cfg.InterruptInterval)
		halt = kernel.HandleInterrupt(irq)
	}

	if halt == 0 {
		logger.Warn("stopped after reaching the interrupt safety bound", slog.Int("max_interrupts", *maxInterrupts))
	} else {
		logger.Info("kernel halted", slog.String("report_path", cfg.ReportPath))
	}
}

// newLogger builds a structured logger at the configured severity.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
