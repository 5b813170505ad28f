package so

// GlobalMetrics accumulates kernel-wide accounting, alongside the per-process
// ProcessMetrics each descriptor carries (spec.md §4.7).
type GlobalMetrics struct {
	TotalRuntime  int
	TotalIdleTime int
	IRQCounts     [irqKindCount]int
}

// metricTick is phase 1 of HandleInterrupt: it reads the instruction clock,
// credits the elapsed delta against global and per-process counters, and
// records the new reading for the next tick. The very first tick only
// primes prevClock; no delta exists yet to credit.
func (k *Kernel) metricTick() {
	reading, err := k.clock.Instructions()
	if err != nil {
		k.fail("clock read during metric tick", err)
		return
	}

	prev := k.prevClock
	k.prevClock = reading
	if prev < 0 {
		return
	}

	delta := reading - prev
	k.metrics.TotalRuntime += delta
	if k.current == nil {
		k.metrics.TotalIdleTime += delta
	}

	for _, d := range k.table.All() {
		if d.State == Dead {
			continue
		}
		d.Metrics.ReturnTime += delta
		switch d.State {
		case Ready:
			d.Metrics.ReadyTime += delta
		case Running:
			d.Metrics.RunningTime += delta
		case Blocked:
			d.Metrics.BlockedTime += delta
		}
	}
}
