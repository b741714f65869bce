package vm

// ops_ports.go: family 7, ports. 256 input and 256 output port slots, each
// a (value, flag) pair; port 0's input flag is the handshake bit set by the
// input task (see io_external.go).

func init() {
	register(ReadIn, func(m *Machine, operands []uint32) (bool, error) {
		dst, port := Reg(operands[0]), Word(operands[1])

		m.portMu.RLock()
		m.Reg[dst] = m.In[port].Value
		m.portMu.RUnlock()

		return false, nil
	})

	register(WriteOut, func(m *Machine, operands []uint32) (bool, error) {
		port, src := Word(operands[0]), Reg(operands[1])

		m.portMu.Lock()
		m.Out[port].Value = m.Reg[src]
		m.portMu.Unlock()

		return false, nil
	})

	register(ReadInFlag, func(m *Machine, operands []uint32) (bool, error) {
		dst, port := Reg(operands[0]), Word(operands[1])

		m.portMu.RLock()
		flag := m.In[port].Flag
		m.portMu.RUnlock()

		m.Reg[dst] = 0
		if flag {
			m.Reg[dst] = 1
		}

		return false, nil
	})

	register(WriteOutFlag, func(m *Machine, operands []uint32) (bool, error) {
		port, src := Word(operands[0]), Reg(operands[1])

		m.portMu.Lock()
		m.Out[port].Flag = m.Reg[src] != 0
		m.portMu.Unlock()

		return false, nil
	})
}
