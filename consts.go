package so

// Trampoline save-area addresses (spec.md §6): the hardware trampoline
// deposits the interrupted program's PC/A/X there before raising an
// interrupt, and the kernel writes the next program's PC/A/X back before
// returning control.
const (
	AddrIRQEndPC   = 1000
	AddrIRQEndA    = 1001
	AddrIRQEndX    = 1002
	AddrIRQEndErro = 1003
)

// Fixed load addresses for the two programs the kernel bootstraps itself
// with: the trampoline stub, loaded once at kernel construction, and the
// init program, loaded the first time a RESET interrupt arrives.
const (
	TrampolineLoadAddress = 0
	InitLoadAddress       = 100
)

// Syscall identifiers, read out of the current descriptor's A register on
// IRQSyscall (spec.md §4.6).
const (
	SOLe         = 1
	SOEscr       = 2
	SOCriaProc   = 3
	SOMataProc   = 4
	SOEsperaProc = 5
)
