package so

// pollBlocked is phase 4 of HandleInterrupt: it sweeps every BLOCKED
// descriptor in table order and unblocks those whose wait condition has
// been satisfied. Grounded on so_trata_pendencias and its three
// verifica_* helpers.
func (k *Kernel) pollBlocked() {
	for _, d := range k.table.All() {
		if d.State != Blocked {
			continue
		}
		switch d.Reason {
		case ReasonReadPending:
			k.pollRead(d)
		case ReasonWritePending:
			k.pollWrite(d)
		case ReasonAwaitDeath:
			k.pollAwaitDeath(d)
		}
	}
}

// unblock returns d to READY with register A cleared to 0 and enqueues it at
// the ready queue's tail. Grounded on verifica_leitura/verifica_escrita/
// verifica_morte's shared tail: set_estado(PRONTO), set_motivo_bloq(OK),
// set_a(0), adiciona_fila.
func (k *Kernel) unblock(d *ProcessDescriptor) {
	d.A = 0
	d.Reason = ReasonNone
	d.enterState(Ready)
	k.ready.Enqueue(d)
}

func (k *Kernel) pollRead(d *ProcessDescriptor) {
	ready, err := k.io.KeyboardReady(d.Terminal)
	if err != nil {
		k.fail("keyboard ready poll", err)
		return
	}
	if !ready {
		return
	}
	datum, err := k.io.ReadKeyboard(d.Terminal)
	if err != nil {
		k.fail("keyboard read poll", err)
		return
	}
	k.unblock(d)
	d.A = datum
}



func (k *Kernel) pollWrite(d *ProcessDescriptor) {
	ready, err := k.io.ScreenReady(d.Terminal)
	if err != nil {
		k.fail("screen ready poll", err)
		return
	}
	if !ready {
		return
	}
	if err := k.io.WriteScreen(d.Terminal, d.X); err != nil {
		k.fail("screen write poll", err)
		return
	}
	k.unblock(d)
}

// pollAwaitDeath unblocks the waiter once its target has died. A target
// that cannot be found at all leaves the waiter BLOCKED rather than
// unblocking it (spec.md §4.3, resolving the §9 open question on a missing
// target: there is no dead-target signal to deliver, so the waiter simply
// waits forever rather than waking up to a result it never asked for).
func (k *Kernel) pollAwaitDeath(d *ProcessDescriptor) {
	target := k.table.Lookup(d.TargetPID)
	if target != nil && target.State == Dead {
		k.unblock(d)
	}
}
