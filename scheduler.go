package so

// Scheduler selects the kernel's next running descriptor as phase 5 of
// HandleInterrupt. Implementations may leave k.current unchanged, promote a
// ready descriptor into it, or set it to nil when nothing is runnable.
type Scheduler interface {
	SelectNext(k *Kernel)
}

// newScheduler returns the Scheduler for the given policy. Callers must only
// pass a policy that Config validation has already accepted.
func newScheduler(p Policy) Scheduler {
	switch p {
	case PolicyRoundRobin:
		return roundRobinScheduler{}
	case PolicyPriorityAging:
		return priorityAgingScheduler{}
	default:
		return baseScheduler{}
	}
}

// baseScheduler never preempts a running descriptor and never reorders the
// ready queue: it scans the process table in creation order for the first
// READY descriptor. Grounded on so_escalona_base.
type baseScheduler struct{}

func (baseScheduler) SelectNext(k *Kernel) {
	if k.current != nil && k.current.State == Running {
		return
	}
	for _, d := range k.table.All() {
		if d.State == Ready {
			d.enterState(Running)
			k.current = d
			return
		}
	}
	k.current = nil
}

// roundRobinScheduler preempts the running descriptor once its quantum is
// exhausted, requeues it at the tail, and dispatches the ready queue's head
// with a fresh quantum. Grounded on so_escalona_circular.
type roundRobinScheduler struct{}

func (roundRobinScheduler) SelectNext(k *Kernel) {
	if k.current != nil && k.current.State == Running && k.quantum > 0 {
		return
	}
	if k.current != nil && k.current.State == Running && k.quantum == 0 {
		k.preemptCurrent()
	}
	if next := k.ready.Dequeue(); next != nil {
		next.enterState(Running)
		k.current = next
		k.resetQuantum()
		return
	}
	k.current = nil
}

// priorityAgingScheduler behaves like roundRobinScheduler (both age the
// preempted descriptor's priority through preemptCurrent), but re-sorts the
// ready queue by ascending priority before picking its head. Grounded on
// so_escalona_prioritario.
type priorityAgingScheduler struct{}

func (priorityAgingScheduler) SelectNext(k *Kernel) {
	if k.current != nil && k.current.State == Running && k.quantum > 0 {
		return
	}
	if k.current != nil && k.current.State == Running && k.quantum == 0 {
		k.preemptCurrent()
	}
	k.ready.SortByPriority()
	if next := k.ready.Dequeue(); next != nil {
		next.enterState(Running)
		k.current = next
		k.resetQuantum()
		return
	}
	k.current = nil
}

// preemptCurrent moves the running descriptor back to READY, ages its
// priority, counts the preemption, and enqueues it at the ready queue's
// tail. Shared by the two quantum-based policies.
func (k *Kernel) preemptCurrent() {
	cur := k.current
	cur.Priority = k.agedPriority(cur)
	cur.enterState(Ready)
	cur.Reason = ReasonNone
	cur.Metrics.Preemptions++
	k.ready.Enqueue(cur)
}
