package so

// ProcessTable is a bounded, indexed collection of process descriptors. It
// owns every descriptor it creates; a descriptor is never freed while the
// table exists, so an AWAIT_DEATH waiter can always observe a dead target
// (spec.md §3).
type ProcessTable struct {
	slots    []*ProcessDescriptor
	capacity int
	nextPID  int
}

// newProcessTable returns an empty table with the given capacity and a PID
// counter starting at 1, per spec.md §3's monotonicity invariant (I4).
func newProcessTable(capacity int) *ProcessTable {
	return &ProcessTable{
		slots:    make([]*ProcessDescriptor, 0, capacity),
		capacity: capacity,
		nextPID:  1,
	}
}

// Len returns the number of descriptors currently in the table, live or
// dead.
func (t *ProcessTable) Len() int {
	return len(t.slots)
}

// All returns the table's descriptors in index order. The returned slice
// aliases the table's backing storage; callers must not retain it across a
// create call.
func (t *ProcessTable) All() []*ProcessDescriptor {
	return t.slots
}

// create allocates a new descriptor at program counter pc, places it in the
// first empty slot, and assigns it the next monotonic PID. It does not
// enqueue the descriptor or invoke the loader; callers that need the full
// spawn behavior of spec.md §4.2 should use Kernel.createProcess instead.
func (t *ProcessTable) create(pc int) (*ProcessDescriptor, error) {
	if len(t.slots) >= t.capacity {
		return nil, ErrTableFull
	}
	d := newProcessDescriptor(t.nextPID, pc)
	t.nextPID++
	t.slots = append(t.slots, d)
	return d, nil
}

// Lookup performs a linear scan for pid and returns its descriptor, or nil
// if no such descriptor exists.
func (t *ProcessTable) Lookup(pid int) *ProcessDescriptor {
	for _, d := range t.slots {
		if d.PID == pid {
			return d
		}
	}
	return nil
}

// Kill transitions the descriptor with the given PID to DEAD and clears its
// block reason. It does not remove the descriptor from the table. Reports
// whether a matching descriptor was found.
func (t *ProcessTable) Kill(pid int) bool {
	d := t.Lookup(pid)
	if d == nil {
		return false
	}
	d.State = Dead
	d.Reason = ReasonNone
	return true
}

// AllDead reports whether every descriptor in the table is DEAD. An empty
// table is not considered all-dead (there is nothing to terminate yet).
func (t *ProcessTable) AllDead() bool {
	if len(t.slots) == 0 {
		return false
	}
	for _, d := range t.slots {
		if d.State != Dead {
			return false
		}
	}
	return true
}
