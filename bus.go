// Package so implements the core of an educational operating-system kernel
// atop a simulated machine. The kernel is reentered exclusively through
// HandleInterrupt, the single entry point a hardware trampoline calls on
// every reset, clock tick, CPU fault, or system-call trap.
package so

// Bus provides word-addressed access to the simulated machine's memory.
// All addresses are non-negative byte offsets; the kernel does not validate
// addresses beyond the byte-range checks required to copy guest strings.
type Bus interface {
	Read(addr int) (int, error)
	Write(addr int, val int) error
}

// IOBus is the simulated terminal subsystem: four terminal groups indexed
// 0..3, each exposing keyboard and screen readiness and data registers.
type IOBus interface {
	// KeyboardReady reports whether a datum is waiting to be read for the
	// given terminal group.
	KeyboardReady(group int) (bool, error)
	// ReadKeyboard consumes and returns one datum from the given group's
	// keyboard. Callers must check KeyboardReady first.
	ReadKeyboard(group int) (int, error)
	// ScreenReady reports whether the given group's screen can accept a
	// write.
	ScreenReady(group int) (bool, error)
	// WriteScreen writes one datum to the given group's screen. Callers
	// must check ScreenReady first.
	WriteScreen(group int, val int) error
}

// Clock is the simulated timer/instruction-counter device.
type Clock interface {
	// SetTimer arms the timer to raise IRQClock after the given number of
	// instructions, or disables it when ticks is 0.
	SetTimer(ticks int) error
	// AckInterrupt clears the clock's pending-interrupt flag.
	AckInterrupt() error
	// Instructions reads the monotonic instruction counter.
	Instructions() (int, error)
}

// Loader loads a named program image and reports where it should be placed
// in guest memory.
type Loader interface {
	// Load reads the named program and returns its load address and raw
	// payload bytes. The kernel writes payload[i] to Bus address addr+i.
	Load(name string) (addr int, payload []byte, err error)
}
