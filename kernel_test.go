package so

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootCreatesSingleRunningInit(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1, 2, 3})
	k, _, _, _ := newTestKernel(testConfig(), loader)

	halt := k.HandleInterrupt(IRQReset)

	require.Equal(t, 0, halt)
	require.NotNil(t, k.current)
	assert.Equal(t, 1, k.current.PID)
	assert.Equal(t, Running, k.current.State)
	assert.Equal(t, InitLoadAddress, k.current.PC)
	assert.Equal(t, 1, k.table.Len())
}

func TestClockPreemptionUnderRoundRobin(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = "round_robin"
	cfg.Quantum = 2

	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	loader.add("worker.maq", 200, []byte{1})
	k, bus, clock, _ := newTestKernel(cfg, loader)

	k.HandleInterrupt(IRQReset)
	first := k.current
	require.NotNil(t, first)

	// Create a second process so there is someone to preempt to.
	writeGuestString(bus, 777, "worker.maq")
	bus.mem[AddrIRQEndPC] = first.PC
	bus.mem[AddrIRQEndA] = SOCriaProc
	bus.mem[AddrIRQEndX] = 777
	k.HandleInterrupt(IRQSyscall)
	require.Equal(t, 2, k.table.Len())
	second := k.table.Lookup(2)
	require.NotNil(t, second)
	assert.Equal(t, Ready, second.State)

	// Exhaust the quantum with clock ticks; the interrupt interval doesn't
	// matter here, only that AckInterrupt/SetTimer succeed. The second tick
	// brings the quantum to 0, so that same interrupt's scheduling phase
	// preempts `first` and dispatches `second` with a fresh quantum.
	clock.count += 10
	k.HandleInterrupt(IRQClock)
	clock.count += 10
	k.HandleInterrupt(IRQClock)

	// A third tick only spends part of `second`'s fresh quantum, so the
	// preemption above is still the only one.
	clock.count += 10
	k.HandleInterrupt(IRQClock)

	assert.Equal(t, second, k.current)
	assert.Equal(t, Running, second.State)
	assert.Equal(t, Ready, first.State)
	assert.Equal(t, 1, first.Metrics.Preemptions)
}

func TestBlockedReadThenUnblock(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, term := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current
	require.NotNil(t, cur)

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndA] = SOLe
	k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, Blocked, cur.State)
	assert.Equal(t, ReasonReadPending, cur.Reason)

	// No other process exists, so the scheduler leaves current nil and the
	// machine halts until the keyboard becomes ready.
	halt := k.HandleInterrupt(IRQClock)
	assert.Equal(t, 1, halt)

	term.keyboardReady[cur.Terminal] = true
	term.keyboardData[cur.Terminal] = 42
	halt = k.HandleInterrupt(IRQClock)

	assert.Equal(t, Running, cur.State)
	assert.Equal(t, 42, cur.A)
	assert.Equal(t, 0, halt)
}

func TestWaitForDeathUnblocksOnTargetDeath(t *testing.T) {
	cfg := testConfig()
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	loader.add("worker.maq", 200, []byte{1})
	k, bus, _, _ := newTestKernel(cfg, loader)

	k.HandleInterrupt(IRQReset)
	waiter := k.current
	writeGuestString(bus, 500, "worker.maq")
	bus.mem[AddrIRQEndPC] = waiter.PC
	bus.mem[AddrIRQEndA] = SOCriaProc
	bus.mem[AddrIRQEndX] = 500
	k.HandleInterrupt(IRQSyscall)
	target := k.table.Lookup(2)
	require.NotNil(t, target)

	bus.mem[AddrIRQEndPC] = waiter.PC
	bus.mem[AddrIRQEndA] = SOEsperaProc
	bus.mem[AddrIRQEndX] = target.PID
	k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, Blocked, waiter.State)
	assert.Equal(t, ReasonAwaitDeath, waiter.Reason)
	assert.Equal(t, target.PID, waiter.TargetPID)

	k.table.Kill(target.PID)
	k.HandleInterrupt(IRQClock)

	// The poll phase returns the waiter to READY, and the scheduling phase of
	// the same interrupt dispatches it, since nothing else is runnable.
	assert.Equal(t, Running, waiter.State)
}

// TestPollAwaitDeathLeavesWaiterBlockedOnMissingTarget exercises pollBlocked
// directly against a waiter whose TargetPID names no descriptor in the
// table at all (as opposed to one that exists and has died). spec.md §4.3
// requires the waiter to stay BLOCKED in this case rather than wake up to a
// death that never happened.
func TestPollAwaitDeathLeavesWaiterBlockedOnMissingTarget(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, _, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	waiter := k.current
	require.NotNil(t, waiter)

	waiter.TargetPID = 99
	waiter.Reason = ReasonAwaitDeath
	waiter.enterState(Blocked)
	k.current = nil

	halt := k.HandleInterrupt(IRQClock)

	assert.Equal(t, Blocked, waiter.State)
	assert.Equal(t, ReasonAwaitDeath, waiter.Reason)
	assert.Equal(t, 1, halt)
}

func TestWaitForNonexistentTargetFailsWithoutBlocking(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	waiter := k.current
	require.NotNil(t, waiter)

	bus.mem[AddrIRQEndPC] = waiter.PC
	bus.mem[AddrIRQEndA] = SOEsperaProc
	bus.mem[AddrIRQEndX] = 99
	k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, -1, waiter.A)
	assert.Equal(t, Running, waiter.State)
}

func TestSelfWaitRejected(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndA] = SOEsperaProc
	bus.mem[AddrIRQEndX] = cur.PID
	k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, -1, cur.A)
	assert.Equal(t, Running, cur.State)
}

func TestKillNonexistentProcessReportsFailure(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndA] = SOMataProc
	bus.mem[AddrIRQEndX] = 99
	k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, -1, cur.A)
}

func TestPriorityAgingScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = "priority_aging"
	cfg.Quantum = 10
	k := &Kernel{config: cfg, quantum: 0}

	preemptedAtZero := &ProcessDescriptor{Priority: 0.5}
	assert.InDelta(t, 0.75, k.agedPriority(preemptedAtZero), 1e-9)

	k.quantum = cfg.Quantum
	preemptedAtFull := &ProcessDescriptor{Priority: 0.5}
	assert.InDelta(t, 0.25, k.agedPriority(preemptedAtFull), 1e-9)
}

func TestAllDeadHaltsAndWritesReport(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	cfg := testConfig()
	cfg.ReportPath = t.TempDir() + "/report.txt"
	k, bus, _, _ := newTestKernel(cfg, loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndA] = SOMataProc
	bus.mem[AddrIRQEndX] = 0
	halt := k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, 1, halt)
	assert.True(t, k.table.AllDead())
	assert.FileExists(t, cfg.ReportPath)
}

func TestCPUErrorKillsOffendingProcessOnly(t *testing.T) {
	cfg := testConfig()
	cfg.ReportPath = t.TempDir() + "/report.txt"
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(cfg, loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current
	require.NotNil(t, cur)

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndErro] = 7
	halt := k.HandleInterrupt(IRQCPUError)

	assert.Equal(t, Dead, cur.State)
	assert.False(t, k.fatal)
	assert.Equal(t, 1, halt)
	assert.True(t, k.table.AllDead())
}

func TestCPUErrorWithNoCurrentProcessIsFatal(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	bus.mem[AddrIRQEndErro] = 3
	halt := k.HandleInterrupt(IRQCPUError)

	assert.True(t, k.fatal)
	assert.Equal(t, 1, halt)
}

func TestUnknownSyscallIDKillsOffendingProcess(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current
	require.NotNil(t, cur)

	bus.mem[AddrIRQEndPC] = cur.PC
	bus.mem[AddrIRQEndA] = 999
	halt := k.HandleInterrupt(IRQSyscall)

	assert.Equal(t, Dead, cur.State)
	assert.False(t, k.fatal)
	assert.Equal(t, 1, halt)
}

// writeGuestString writes a NUL-terminated byte string into the fake bus at
// addr, mirroring how a guest program's filename argument would appear in
// memory.
func writeGuestString(bus *fakeBus, addr int, s string) {
	for i, c := range []byte(s) {
		bus.mem[addr+i] = int(c)
	}
	bus.mem[addr+len(s)] = 0
}
