package vm

// ops_control.go: family 1, control/no-op.

func init() {
	register(Nop, func(m *Machine, operands []uint32) (bool, error) {
		return false, nil
	})
}
