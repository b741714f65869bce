package vm

// ops_frame.go: family 7, framebuffer. VRAM is a 307,200-word buffer split
// into two 480x320 halves; drawing always targets the dead half
// (153600-active), so a program can build the next frame while the display
// task presents the current one. All writes take the VM's exclusive VRAM
// lock for the duration of the opcode body, per the concurrency design.

const frameWidth = 480

func (m *Machine) deadHalf() int {
	return VRAMHalf - m.activeBuffer
}

func init() {
	register(CpyRegion, func(m *Machine, operands []uint32) (bool, error) {
		src, count := Word(operands[0]), Word(operands[1])

		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		dead := m.deadHalf()

		for i := Word(0); i < count; i++ {
			val, f := m.ramLoad(src + i)
			if f != nil {
				return true, f
			}

			m.VRAM[dead+int(i)] = val
		}

		return false, nil
	})

	register(CpyRegionPtr, func(m *Machine, operands []uint32) (bool, error) {
		ptr, count := Reg(operands[0]), Word(operands[1])

		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		dead := m.deadHalf()
		src := m.Reg[ptr]

		for i := Word(0); i < count; i++ {
			val, f := m.ramLoad(src + i)
			if f != nil {
				return true, f
			}

			m.VRAM[dead+int(i)] = val
		}

		return false, nil
	})

	register(Plot, func(m *Machine, operands []uint32) (bool, error) {
		x, y, color := Word(operands[0]), Word(operands[1]), Reg(operands[2])

		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		m.VRAM[m.deadHalf()+int(y)*frameWidth+int(x)] = m.Reg[color]

		return false, nil
	})

	register(Place, func(m *Machine, operands []uint32) (bool, error) {
		spriteReg, xReg, yReg, wReg, hReg := Reg(operands[0]), Reg(operands[1]), Reg(operands[2]), Reg(operands[3]), Reg(operands[4])
		sprite, x, y, w, h := m.Reg[spriteReg], m.Reg[xReg], m.Reg[yReg], m.Reg[wReg], m.Reg[hReg]

		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		dead := m.deadHalf()

		for row := Word(0); row < h; row++ {
			for col := Word(0); col < w; col++ {
				val, f := m.ramLoad(sprite + row*w + col)
				if f != nil {
					return true, f
				}

				m.VRAM[dead+int(y+row)*frameWidth+int(x+col)] = val
			}
		}

		return false, nil
	})

	register(Solid, func(m *Machine, operands []uint32) (bool, error) {
		xReg, yReg, wReg, hReg, color := Reg(operands[0]), Reg(operands[1]), Reg(operands[2]), Reg(operands[3]), Reg(operands[4])
		x, y, w, h := m.Reg[xReg], m.Reg[yReg], m.Reg[wReg], m.Reg[hReg]

		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		dead := m.deadHalf()
		val := m.Reg[color]

		for row := Word(0); row < h; row++ {
			for col := Word(0); col < w; col++ {
				m.VRAM[dead+int(y+row)*frameWidth+int(x+col)] = val
			}
		}

		return false, nil
	})

	register(ColorAt, func(m *Machine, operands []uint32) (bool, error) {
		dst, x, y := Reg(operands[0]), Word(operands[1]), Word(operands[2])

		m.vramMu.RLock()
		m.Reg[dst] = m.VRAM[m.deadHalf()+int(y)*frameWidth+int(x)]
		m.vramMu.RUnlock()

		return false, nil
	})

	register(ColorPtr, func(m *Machine, operands []uint32) (bool, error) {
		dst, ptr := Reg(operands[0]), Reg(operands[1])

		m.vramMu.RLock()
		m.Reg[dst] = m.VRAM[m.deadHalf()+int(m.Reg[ptr])]
		m.vramMu.RUnlock()

		return false, nil
	})

	register(SwapFrameBuf, func(m *Machine, operands []uint32) (bool, error) {
		m.vramMu.Lock()
		m.activeBuffer = VRAMHalf - m.activeBuffer
		m.vramMu.Unlock()

		return false, nil
	})

	register(CpyShown, func(m *Machine, operands []uint32) (bool, error) {
		m.vramMu.Lock()
		defer m.vramMu.Unlock()

		active, dead := m.activeBuffer, m.deadHalf()
		copy(m.VRAM[dead:dead+VRAMHalf], m.VRAM[active:active+VRAMHalf])

		return false, nil
	})

	register(VBlank, func(m *Machine, operands []uint32) (bool, error) {
		select {
		case <-m.vblank:
			m.setFlag(ConditionFlag, true)
		default:
			m.setFlag(ConditionFlag, false)
		}

		return false, nil
	})
}
