package so

import "errors"

// Sentinel errors returned by the kernel's internal operations. Syscall
// handlers translate these into the guest-visible -1 contract of spec.md §4.6
// rather than propagating the Go error across the trampoline boundary.
var (
	// ErrTableFull is returned by ProcessTable.create when the table already
	// holds its capacity of descriptors. Dead descriptors keep their slots.
	ErrTableFull = errors.New("so: process table is full")

	// ErrProcessNotFound is returned by killProcess and lookupWaitTarget
	// when no descriptor with the requested PID exists, before the
	// syscall handler translates it into the guest A = -1 contract.
	ErrProcessNotFound = errors.New("so: process not found")

	// ErrLoadFailed is wrapped into the error New returns when the Loader
	// collaborator cannot produce the trampoline stub or places it at the
	// wrong address. Load failures of other programs are not wrapped with it.
	ErrLoadFailed = errors.New("so: program load failed")

	// ErrGuestStringInvalid is returned when copyGuestString encounters a
	// byte outside [0,255] or fails to find a NUL terminator within the
	// byte budget.
	ErrGuestStringInvalid = errors.New("so: invalid guest string")
)
