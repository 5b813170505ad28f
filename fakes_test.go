package so

import (
	"errors"
	"io"
	"log/slog"
)

// fakeBus is an in-memory Bus backed by a map, so tests can exercise sparse
// guest address spaces without allocating a full array. Grounded on the
// teacher's testBus pattern of a minimal in-package fake satisfying the
// collaborator interface directly, rather than a generated mock.
type fakeBus struct {
	mem     map[int]int
	readErr error
	writeErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{mem: make(map[int]int)}
}

func (b *fakeBus) Read(addr int) (int, error) {
	if b.readErr != nil {
		return 0, b.readErr
	}
	return b.mem[addr], nil
}

func (b *fakeBus) Write(addr int, val int) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.mem[addr] = val
	return nil
}

// fakeClock is a Clock whose instruction counter advances only when the
// test tells it to, so tests can script exact clock deltas per interrupt.
type fakeClock struct {
	count     int
	timer     int
	acks      int
	readErr   error
	setErr    error
}

func (c *fakeClock) SetTimer(ticks int) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.timer = ticks
	return nil
}

func (c *fakeClock) AckInterrupt() error {
	c.acks++
	return nil
}

func (c *fakeClock) Instructions() (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	return c.count, nil
}

// fakeLoader serves fixed program images by name.
type fakeLoader struct {
	programs map[string]fakeProgram
}

type fakeProgram struct {
	addr    int
	payload []byte
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{programs: make(map[string]fakeProgram)}
}

func (l *fakeLoader) add(name string, addr int, payload []byte) {
	l.programs[name] = fakeProgram{addr: addr, payload: payload}
}

func (l *fakeLoader) Load(name string) (int, []byte, error) {
	p, ok := l.programs[name]
	if !ok {
		return 0, nil, errors.New("fakeLoader: no such program " + name)
	}
	return p.addr, p.payload, nil
}

// fakeIO is an IOBus whose four terminal groups are driven directly by
// tests: pushing keyboard data, flipping screen readiness, and recording
// what was written to the screen.
type fakeIO struct {
	keyboardReady [4]bool
	keyboardData  [4]int
	screenReady   [4]bool
	screenWritten [4][]int
}

func newFakeIO() *fakeIO {
	var f fakeIO
	for i := range f.screenReady {
		f.screenReady[i] = true
	}
	return &f
}

func (f *fakeIO) KeyboardReady(group int) (bool, error) {
	return f.keyboardReady[group], nil
}

func (f *fakeIO) ReadKeyboard(group int) (int, error) {
	f.keyboardReady[group] = false
	return f.keyboardData[group], nil
}

func (f *fakeIO) ScreenReady(group int) (bool, error) {
	return f.screenReady[group], nil
}

func (f *fakeIO) WriteScreen(group int, val int) error {
	f.screenWritten[group] = append(f.screenWritten[group], val)
	return nil
}

// testLogger discards everything: tests assert on kernel state, not log
// output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestKernel builds a Kernel wired to fakes, with the trampoline stub
// already loaded, ready for a RESET interrupt.
func newTestKernel(cfg Config, loader *fakeLoader) (*Kernel, *fakeBus, *fakeClock, *fakeIO) {
	bus := newFakeBus()
	clock := &fakeClock{count: 0}
	term := newFakeIO()

	if _, ok := loader.programs["trata_int.maq"]; !ok {
		loader.add("trata_int.maq", TrampolineLoadAddress, []byte{0xAA})
	}

	k, err := New(bus, term, clock, loader, testLogger(), cfg)
	if err != nil {
		panic(err)
	}
	return k, bus, clock, term
}

func testConfig() Config {
	return Config{
		InterruptInterval: 50,
		MaxProcesses:      8,
		Quantum:           10,
		Policy:            "base",
		ReportPath:        "/dev/null",
	}
}
