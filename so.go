// Package so implements the core of an educational operating-system kernel
// atop a simulated machine. The kernel is reentered exclusively through
// HandleInterrupt, the single entry point a hardware trampoline calls on
// every reset, clock tick, CPU fault, or system-call trap.
package so

import (
	"fmt"
	"log/slog"
)

// Kernel is the single-threaded, non-reentrant core of the operating
// system. It owns the process table, ready queue, and every piece of
// accounting, and is driven exclusively through HandleInterrupt.
type Kernel struct {
	bus    Bus
	io     IOBus
	clock  Clock
	loader Loader
	logger *slog.Logger
	config Config

	table     *ProcessTable
	ready     *ReadyQueue
	scheduler Scheduler

	current *ProcessDescriptor

	// quantum is the current descriptor's remaining run budget, in clock
	// ticks, under the two quantum-based policies. Unused by baseScheduler.
	quantum int

	// prevClock is the instruction-counter reading observed on the previous
	// metric tick, or -1 before the first tick has ever run.
	prevClock int

	// fatal marks an unrecoverable kernel condition: a collaborator failure,
	// or a CPU fault or unknown IRQ arriving with no current descriptor to
	// blame. Once set, HandleInterrupt stops dispatching and the machine
	// halts.
	fatal bool

	metrics GlobalMetrics
}

// New builds a Kernel wired to the given collaborators and loads the
// trampoline stub program, arming the clock for the first interrupt.
// Grounded on so_cria.
func New(bus Bus, io IOBus, clock Clock, loader Loader, logger *slog.Logger, cfg Config) (*Kernel, error) {
	k := &Kernel{
		bus:       bus,
		io:        io,
		clock:     clock,
		loader:    loader,
		logger:    logger,
		config:    cfg,
		table:     newProcessTable(cfg.MaxProcesses),
		ready:     newReadyQueue(),
		scheduler: newScheduler(cfg.policy()),
		prevClock: -1,
		quantum:   cfg.Quantum,
	}

	addr, payload, err := loader.Load("trata_int.maq")
	if err != nil {
		return nil, fmt.Errorf("%w: trampoline stub: %v", ErrLoadFailed, err)
	}
	if addr != TrampolineLoadAddress {
		return nil, fmt.Errorf("%w: trampoline stub wants load address %d, loader returned %d", ErrLoadFailed, TrampolineLoadAddress, addr)
	}
	if err := k.writeProgram(addr, payload); err != nil {
		return nil, fmt.Errorf("write trampoline stub to memory: %w", err)
	}

	if err := clock.SetTimer(cfg.InterruptInterval); err != nil {
		return nil, fmt.Errorf("arm clock timer: %w", err)
	}

	return k, nil
}

// HandleInterrupt is the kernel's single entry point, called by the
// trampoline with the kind of interrupt it just serviced. It runs the
// seven dispatch phases in strict order and returns 1 when the machine
// should halt, 0 when it should resume the returned descriptor.
//
// Grounded on so_trata_interrupcao's phase sequence: metric tick, save,
// service, poll pending, schedule, termination check, dispatch.
func (k *Kernel) HandleInterrupt(irq IRQKind) int {
	k.metricTick()
	k.saveCPUState()
	k.service(irq)
	k.pollBlocked()
	k.scheduler.SelectNext(k)

	if k.table.AllDead() {
		_ = k.clock.SetTimer(0)
		k.writeMetricsReport()
		return 1
	}
	if k.current == nil || k.fatal {
		return 1
	}
	return k.dispatch()
}

// saveCPUState is phase 2: it copies the interrupted program's PC/A/X out
// of the trampoline's save area and into the current descriptor. A nil
// current descriptor means the interrupt arrived with nothing running
// (before the first RESET, or while nothing was runnable), so there is
// nothing to save.
func (k *Kernel) saveCPUState() {
	if k.current == nil {
		return
	}
	pc, errPC := k.bus.Read(AddrIRQEndPC)
	a, errA := k.bus.Read(AddrIRQEndA)
	x, errX := k.bus.Read(AddrIRQEndX)
	if errPC != nil {
		k.fail("read trampoline save area (PC)", errPC)
		return
	}
	if errA != nil {
		k.fail("read trampoline save area (A)", errA)
		return
	}
	if errX != nil {
		k.fail("read trampoline save area (X)", errX)
		return
	}
	k.current.PC = pc
	k.current.A = a
	k.current.X = x
}

// service is phase 3: it counts the interrupt by kind and dispatches to
// its handler. A kind with no handler is counted as IRQUnknown and
// serviced by handleUnknown.
func (k *Kernel) service(irq IRQKind) {
	h, ok := irqHandlers[irq]
	if !ok {
		k.metrics.IRQCounts[IRQUnknown]++
		k.handleUnknown()
		return
	}
	k.metrics.IRQCounts[irq]++
	h(k)
}

// dispatch is phase 7: it writes the now-current descriptor's PC/A/X back
// into the trampoline's save area so the machine resumes it.
func (k *Kernel) dispatch() int {
	if err := k.bus.Write(AddrIRQEndPC, k.current.PC); err != nil {
		k.fail("write trampoline save area (PC)", err)
		return 1
	}
	if err := k.bus.Write(AddrIRQEndA, k.current.A); err != nil {
		k.fail("write trampoline save area (A)", err)
		return 1
	}
	if err := k.bus.Write(AddrIRQEndX, k.current.X); err != nil {
		k.fail("write trampoline save area (X)", err)
		return 1
	}
	return 0
}

// fail records an unrecoverable collaborator failure and halts the kernel.
func (k *Kernel) fail(context string, err error) {
	k.fatal = true
	if err != nil {
		k.logger.Error("kernel fatal error", "context", context, "error", err)
	} else {
		k.logger.Error("kernel fatal error", "context", context)
	}
}

// writeProgram copies payload into guest memory starting at addr, one word
// per byte. Bus is word-addressed, so a multi-byte program occupies one
// bus address per byte.
func (k *Kernel) writeProgram(addr int, payload []byte) error {
	for i, b := range payload {
		if err := k.bus.Write(addr+i, int(b)); err != nil {
			return err
		}
	}
	return nil
}
