package so

import "fmt"

// handleReset services the first interrupt a freshly-booted machine
// delivers: it loads the init program and makes it the current, running
// descriptor. Grounded on so_trata_irq_reset.
func (k *Kernel) handleReset() {
	addr, payload, err := k.loader.Load("init.maq")
	if err != nil {
		k.fail("load init program", err)
		return
	}
	if addr != InitLoadAddress {
		k.fail(fmt.Sprintf("init program wants load address %d, loader returned %d", InitLoadAddress, addr), nil)
		return
	}
	if err := k.writeProgram(addr, payload); err != nil {
		k.fail("write init program to memory", err)
		return
	}

	d, err := k.table.create(addr)
	if err != nil {
		k.fail("create init process", err)
		return
	}
	d.enterState(Running)
	k.current = d
}

// handleClock acknowledges and rearms the timer, then decrements the
// kernel's remaining-quantum counter. Grounded on so_trata_irq_relogio.
func (k *Kernel) handleClock() {
	if err := k.clock.AckInterrupt(); err != nil {
		k.fail("acknowledge clock interrupt", err)
		return
	}
	if err := k.clock.SetTimer(k.config.InterruptInterval); err != nil {
		k.fail("rearm clock timer", err)
		return
	}
	if k.quantum > 0 {
		k.quantum--
	}
}

// handleCPUError services a CPU fault. Rather than halting the whole
// kernel, it kills the offending descriptor and lets every other process
// continue: a fault is this descriptor's problem, not the kernel's
// (spec.md §9, resolving the redesign flag against so_trata_irq_err_cpu's
// kernel-wide erro_interno flag).
func (k *Kernel) handleCPUError() {
	code, err := k.bus.Read(AddrIRQEndErro)
	if err != nil {
		k.fail("read cpu error code", err)
		return
	}
	if k.current == nil {
		k.logger.Error("cpu fault with no current process", "code", code)
		k.fatal = true
		return
	}
	k.logger.Error("cpu fault, killing process", "pid", k.current.PID, "code", code)
	k.table.Kill(k.current.PID)
}

// handleSyscall reads the syscall id out of the current descriptor's A
// register and dispatches it. An id with no registered handler kills the
// offending descriptor rather than halting the kernel, for the same reason
// as handleCPUError.
func (k *Kernel) handleSyscall() {
	if k.current == nil {
		return
	}
	id := k.current.A
	h, ok := syscallHandlers[id]
	if !ok {
		k.logger.Warn("unknown syscall id, killing process", "pid", k.current.PID, "id", id)
		k.table.Kill(k.current.PID)
		return
	}
	h(k)
}

// handleUnknown services an IRQ kind the trampoline contract does not
// define. It kills the current descriptor, following the same policy as
// handleCPUError.
func (k *Kernel) handleUnknown() {
	if k.current == nil {
		k.logger.Warn("unknown IRQ with no current process")
		k.fatal = true
		return
	}
	k.logger.Warn("unknown IRQ, killing process", "pid", k.current.PID)
	k.table.Kill(k.current.PID)
}
