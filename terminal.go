package so

// Register offsets within a terminal group's 4-register block, per spec.md
// §6: group g exposes keyboard-data, keyboard-ready, screen-data, and
// screen-ready registers at base 4*g.
const (
	regKeyboardData  = 0
	regKeyboardReady = 1
	regScreenData    = 2
	regScreenReady   = 3
)

// terminalBase returns the base register address for terminal group g,
// grounded on the original so_calcula_terminal(terminal, tipo) helper.
func terminalBase(group int) int {
	return 4 * group
}

// RegisterIOBus adapts a flat Bus of device registers into the IOBus
// interface, for collaborators that expose terminals as plain memory-mapped
// registers rather than a richer API. cmd/so24b uses this to drive a
// register-level fake or a real machine bus.
type RegisterIOBus struct {
	Bus Bus
}

func (r RegisterIOBus) KeyboardReady(group int) (bool, error) {
	v, err := r.Bus.Read(terminalBase(group) + regKeyboardReady)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r RegisterIOBus) ReadKeyboard(group int) (int, error) {
	return r.Bus.Read(terminalBase(group) + regKeyboardData)
}

func (r RegisterIOBus) ScreenReady(group int) (bool, error) {
	v, err := r.Bus.Read(terminalBase(group) + regScreenReady)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r RegisterIOBus) WriteScreen(group int, val int) error {
	return r.Bus.Write(terminalBase(group)+regScreenData, val)
}
