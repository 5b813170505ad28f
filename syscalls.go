package so

// guestStringMaxLen bounds a filename read out of guest memory, grounded on
// the original copia_str_da_mem's nome[100] buffer.
const guestStringMaxLen = 100

// copyGuestString reads a NUL-terminated byte string out of bus starting at
// addr, failing if it exceeds maxLen or contains a byte outside [0,255].
// Grounded on copia_str_da_mem.
func copyGuestString(bus Bus, addr, maxLen int) (string, error) {
	buf := make([]byte, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		v, err := bus.Read(addr + i)
		if err != nil {
			return "", err
		}
		if v < 0 || v > 255 {
			return "", ErrGuestStringInvalid
		}
		if v == 0 {
			return string(buf), nil
		}
		buf = append(buf, byte(v))
	}
	return "", ErrGuestStringInvalid
}

// blockCurrent moves the current descriptor to BLOCKED for the given
// reason, aging its priority the same way a preemption would. Grounded on
// bloqueia_processo.
func (k *Kernel) blockCurrent(reason BlockReason) {
	cur := k.current
	cur.Priority = k.agedPriority(cur)
	cur.Reason = reason
	cur.enterState(Blocked)
}

// createProcess loads name via the kernel's Loader, places a new descriptor
// at the returned load address, and enqueues it READY. Grounded on
// so_cria_processo plus so_carrega_programa.
func (k *Kernel) createProcess(name string) (*ProcessDescriptor, error) {
	addr, payload, err := k.loader.Load(name)
	if err != nil {
		return nil, err
	}
	if err := k.writeProgram(addr, payload); err != nil {
		return nil, err
	}
	d, err := k.table.create(addr)
	if err != nil {
		return nil, err
	}
	k.ready.Enqueue(d)
	return d, nil
}

// soLe implements SO_LE: read one datum from the current descriptor's
// keyboard into register A, blocking if none is available yet. Grounded on
// so_chamada_le, corrected to actually deliver the read datum (the original
// left this unfinished, per its own "T1: deveria realizar a leitura" note).
func soLe(k *Kernel) {
	cur := k.current
	ready, err := k.io.KeyboardReady(cur.Terminal)
	if err != nil {
		k.fail("keyboard ready check", err)
		return
	}
	if !ready {
		k.blockCurrent(ReasonReadPending)
		return
	}
	datum, err := k.io.ReadKeyboard(cur.Terminal)
	if err != nil {
		k.fail("keyboard read", err)
		return
	}
	cur.A = datum
}

// soEscr implements SO_ESCR: write register X to the current descriptor's
// screen, blocking if it isn't ready yet. Grounded on so_chamada_escr.
func soEscr(k *Kernel) {
	cur := k.current
	ready, err := k.io.ScreenReady(cur.Terminal)
	if err != nil {
		k.fail("screen ready check", err)
		return
	}
	if !ready {
		k.blockCurrent(ReasonWritePending)
		return
	}
	if err := k.io.WriteScreen(cur.Terminal, cur.X); err != nil {
		k.fail("screen write", err)
		return
	}
	cur.A = 0
}

// soCriaProc implements SO_CRIA_PROC: register X holds the guest address of
// a NUL-terminated program name. On success register A receives the new
// descriptor's PID; on any failure it receives -1. Grounded on
// so_chamada_cria_proc, corrected to always set A (the original left the
// failure path commented out).
func soCriaProc(k *Kernel) {
	cur := k.current
	name, err := copyGuestString(k.bus, cur.X, guestStringMaxLen)
	if err != nil {
		cur.A = -1
		return
	}
	d, err := k.createProcess(name)
	if err != nil {
		cur.A = -1
		return
	}
	cur.A = d.PID
}

// killProcess kills the descriptor with the given PID, reporting
// ErrProcessNotFound if none exists. Split out of soMataProc so the syscall
// handler's only job is translating the Go error into the guest -1
// contract.
func (k *Kernel) killProcess(pid int) error {
	if k.table.Kill(pid) {
		return nil
	}
	return ErrProcessNotFound
}

// soMataProc implements SO_MATA_PROC: register X holds the PID to kill, or
// 0 to kill the caller itself. Register A receives 0 on success, -1 if no
// such process exists. Grounded on so_chamada_mata_proc/mata_processo,
// corrected to write the result to the caller's A register rather than the
// killed descriptor's (the original wrote to whichever process it last
// looked up, which could be the victim, not the caller).
func soMataProc(k *Kernel) {
	cur := k.current
	target := cur.X
	if target == 0 {
		target = cur.PID
	}
	if err := k.killProcess(target); err != nil {
		cur.A = -1
		return
	}
	cur.A = 0
}

// lookupWaitTarget resolves the PID register X names for SO_ESPERA_PROC,
// reporting ErrProcessNotFound if it names no live descriptor.
func (k *Kernel) lookupWaitTarget(pid int) (*ProcessDescriptor, error) {
	t := k.table.Lookup(pid)
	if t == nil {
		return nil, ErrProcessNotFound
	}
	return t, nil
}

// soEsperaProc implements SO_ESPERA_PROC: register X holds the PID to wait
// for. Waiting for a nonexistent process or for oneself fails immediately
// with A = -1; otherwise the caller blocks until the target dies. Grounded
// on so_chamada_espera_proc.
func soEsperaProc(k *Kernel) {
	cur := k.current
	target := cur.X
	if target == cur.PID {
		cur.A = -1
		return
	}
	if _, err := k.lookupWaitTarget(target); err != nil {
		cur.A = -1
		return
	}
	cur.TargetPID = target
	k.blockCurrent(ReasonAwaitDeath)
}
