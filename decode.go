package so

// irqFunc is the handler signature for one kind of interrupt.
type irqFunc func(*Kernel)

// irqHandlers dispatches HandleInterrupt's service phase by IRQ kind.
// Grounded on the original opcodeTable lookup-table pattern, generalized
// from a 65536-entry array (one slot per CPU opcode) to a small map keyed
// by the kernel's five-member IRQKind enum.
var irqHandlers = map[IRQKind]irqFunc{
	IRQReset:    (*Kernel).handleReset,
	IRQClock:    (*Kernel).handleClock,
	IRQCPUError: (*Kernel).handleCPUError,
	IRQSyscall:  (*Kernel).handleSyscall,
	IRQUnknown:  (*Kernel).handleUnknown,
}

// syscallFunc is the handler signature for one syscall id.
type syscallFunc func(*Kernel)

// syscallHandlers dispatches handleSyscall by the id found in the current
// descriptor's A register.
var syscallHandlers = map[int]syscallFunc{
	SOLe:         soLe,
	SOEscr:       soEscr,
	SOCriaProc:   soCriaProc,
	SOMataProc:   soMataProc,
	SOEsperaProc: soEsperaProc,
}
