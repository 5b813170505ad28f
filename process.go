package so

// ProcessDescriptor is the kernel's record for one process: its saved
// registers, lifecycle state, and accounting. Descriptors reference each
// other only by PID (see TargetPID), never by pointer, so the process table
// remains the single owner of every descriptor (spec.md §9).
type ProcessDescriptor struct {
	PID  int
	PC   int
	A    int
	X    int
	Mode Mode

	State  ProcessState
	Reason BlockReason

	// TargetPID is the PID this descriptor is waiting on when Reason is
	// ReasonAwaitDeath. It is meaningless otherwise.
	TargetPID int

	// Terminal is this descriptor's terminal group, in [0,3].
	Terminal int

	// Priority is used by the priority-aging scheduler; lower runs sooner.
	// Unused, but always populated, under the other two policies.
	Priority float64

	Metrics ProcessMetrics
}

// ProcessMetrics accumulates per-process accounting driven by the kernel's
// metric-tick phase (spec.md §4.7).
type ProcessMetrics struct {
	ReturnTime   int
	Preemptions  int
	ReadyCount   int
	ReadyTime    int
	RunningCount int
	RunningTime  int
	BlockedCount int
	BlockedTime  int
}

// MeanResponseTime returns cumulative ready time divided by ready-entry
// count, or 0 if the descriptor has never been ready.
func (m ProcessMetrics) MeanResponseTime() float64 {
	if m.ReadyCount == 0 {
		return 0
	}
	return float64(m.ReadyTime) / float64(m.ReadyCount)
}

// terminalGroupFor computes the terminal group assigned to a PID, per
// spec.md §3: (PID-1) mod 4. This is the later of the two revisions named
// in spec.md §9's open questions; the earlier "PID mod 4" form is not used.
func terminalGroupFor(pid int) int {
	return (pid - 1) % 4
}

// newProcessDescriptor builds a freshly-created descriptor in its initial
// state: READY, mode USER, block reason NONE, priority 0.5, with the ready
// count of its metrics already at 1 (it enters READY as part of creation).
func newProcessDescriptor(pid, pc int) *ProcessDescriptor {
	return &ProcessDescriptor{
		PID:      pid,
		PC:       pc,
		Mode:     UserMode,
		State:    Ready,
		Reason:   ReasonNone,
		Terminal: terminalGroupFor(pid),
		Priority: 0.5,
		Metrics: ProcessMetrics{
			ReadyCount: 1,
		},
	}
}

// enterState transitions d to state and bumps the matching per-state entry
// counter. It does not touch Reason; callers set that explicitly so the
// block_reason = NONE iff state in {READY,RUNNING,DEAD} invariant (I3) stays
// the caller's responsibility at the point of transition.
func (d *ProcessDescriptor) enterState(state ProcessState) {
	d.State = state
	switch state {
	case Ready:
		d.Metrics.ReadyCount++
	case Running:
		d.Metrics.RunningCount++
	case Blocked:
		d.Metrics.BlockedCount++
	}
}
