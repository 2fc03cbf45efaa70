package cpu

// initTable populates the 256-entry opcode table with the canonical
// (name, addressing mode, base cycle count) for every implemented byte.
// Entries left zero-valued (empty name) are unknown opcodes.
func (c *CPU) initTable() {
	type e struct {
		op     uint8
		name   string
		mode   AddressingMode
		cycles uint8
	}
	entries := []e{
		// ADC
		{0x69, "ADC", Immediate, 2}, {0x65, "ADC", ZeroPage, 3}, {0x75, "ADC", ZeroPageX, 4},
		{0x6D, "ADC", Absolute, 4}, {0x7D, "ADC", AbsoluteX, 4}, {0x79, "ADC", AbsoluteY, 4},
		{0x61, "ADC", IndexedIndirect, 6}, {0x71, "ADC", IndirectIndexed, 5},
		// AND
		{0x29, "AND", Immediate, 2}, {0x25, "AND", ZeroPage, 3}, {0x35, "AND", ZeroPageX, 4},
		{0x2D, "AND", Absolute, 4}, {0x3D, "AND", AbsoluteX, 4}, {0x39, "AND", AbsoluteY, 4},
		{0x21, "AND", IndexedIndirect, 6}, {0x31, "AND", IndirectIndexed, 5},
		// ASL
		{0x0A, "ASL", Accumulator, 2}, {0x06, "ASL", ZeroPage, 5}, {0x16, "ASL", ZeroPageX, 6},
		{0x0E, "ASL", Absolute, 6}, {0x1E, "ASL", AbsoluteX, 7},
		// branches
		{0x90, "BCC", Relative, 2}, {0xB0, "BCS", Relative, 2}, {0xF0, "BEQ", Relative, 2},
		{0x30, "BMI", Relative, 2}, {0xD0, "BNE", Relative, 2}, {0x10, "BPL", Relative, 2},
		{0x50, "BVC", Relative, 2}, {0x70, "BVS", Relative, 2},
		// BIT
		{0x24, "BIT", ZeroPage, 3}, {0x2C, "BIT", Absolute, 4},
		// BRK
		{0x00, "BRK", Implied, 7},
		// flag ops
		{0x18, "CLC", Implied, 2}, {0xD8, "CLD", Implied, 2}, {0x58, "CLI", Implied, 2},
		{0xB8, "CLV", Implied, 2}, {0x38, "SEC", Implied, 2}, {0xF8, "SED", Implied, 2},
		{0x78, "SEI", Implied, 2},
		// CMP/CPX/CPY
		{0xC9, "CMP", Immediate, 2}, {0xC5, "CMP", ZeroPage, 3}, {0xD5, "CMP", ZeroPageX, 4},
		{0xCD, "CMP", Absolute, 4}, {0xDD, "CMP", AbsoluteX, 4}, {0xD9, "CMP", AbsoluteY, 4},
		{0xC1, "CMP", IndexedIndirect, 6}, {0xD1, "CMP", IndirectIndexed, 5},
		{0xE0, "CPX", Immediate, 2}, {0xE4, "CPX", ZeroPage, 3}, {0xEC, "CPX", Absolute, 4},
		{0xC0, "CPY", Immediate, 2}, {0xC4, "CPY", ZeroPage, 3}, {0xCC, "CPY", Absolute, 4},
		// DEC/INC and register inc/dec
		{0xC6, "DEC", ZeroPage, 5}, {0xD6, "DEC", ZeroPageX, 6}, {0xCE, "DEC", Absolute, 6}, {0xDE, "DEC", AbsoluteX, 7},
		{0xE6, "INC", ZeroPage, 5}, {0xF6, "INC", ZeroPageX, 6}, {0xEE, "INC", Absolute, 6}, {0xFE, "INC", AbsoluteX, 7},
		{0xCA, "DEX", Implied, 2}, {0x88, "DEY", Implied, 2}, {0xE8, "INX", Implied, 2}, {0xC8, "INY", Implied, 2},
		// EOR
		{0x49, "EOR", Immediate, 2}, {0x45, "EOR", ZeroPage, 3}, {0x55, "EOR", ZeroPageX, 4},
		{0x4D, "EOR", Absolute, 4}, {0x5D, "EOR", AbsoluteX, 4}, {0x59, "EOR", AbsoluteY, 4},
		{0x41, "EOR", IndexedIndirect, 6}, {0x51, "EOR", IndirectIndexed, 5},
		// JMP/JSR/RTS/RTI
		{0x4C, "JMP", Absolute, 3}, {0x6C, "JMP", Indirect, 5}, {0x20, "JSR", Absolute, 6},
		{0x60, "RTS", Implied, 6}, {0x40, "RTI", Implied, 6},
		// LDA/LDX/LDY
		{0xA9, "LDA", Immediate, 2}, {0xA5, "LDA", ZeroPage, 3}, {0xB5, "LDA", ZeroPageX, 4},
		{0xAD, "LDA", Absolute, 4}, {0xBD, "LDA", AbsoluteX, 4}, {0xB9, "LDA", AbsoluteY, 4},
		{0xA1, "LDA", IndexedIndirect, 6}, {0xB1, "LDA", IndirectIndexed, 5},
		{0xA2, "LDX", Immediate, 2}, {0xA6, "LDX", ZeroPage, 3}, {0xB6, "LDX", ZeroPageY, 4},
		{0xAE, "LDX", Absolute, 4}, {0xBE, "LDX", AbsoluteY, 4},
		{0xA0, "LDY", Immediate, 2}, {0xA4, "LDY", ZeroPage, 3}, {0xB4, "LDY", ZeroPageX, 4},
		{0xAC, "LDY", Absolute, 4}, {0xBC, "LDY", AbsoluteX, 4},
		// LSR
		{0x4A, "LSR", Accumulator, 2}, {0x46, "LSR", ZeroPage, 5}, {0x56, "LSR", ZeroPageX, 6},
		{0x4E, "LSR", Absolute, 6}, {0x5E, "LSR", AbsoluteX, 7},
		// NOP
		{0xEA, "NOP", Implied, 2},
		// ORA
		{0x09, "ORA", Immediate, 2}, {0x05, "ORA", ZeroPage, 3}, {0x15, "ORA", ZeroPageX, 4},
		{0x0D, "ORA", Absolute, 4}, {0x1D, "ORA", AbsoluteX, 4}, {0x19, "ORA", AbsoluteY, 4},
		{0x01, "ORA", IndexedIndirect, 6}, {0x11, "ORA", IndirectIndexed, 5},
		// stack
		{0x48, "PHA", Implied, 3}, {0x08, "PHP", Implied, 3}, {0x68, "PLA", Implied, 4}, {0x28, "PLP", Implied, 4},
		// ROL/ROR
		{0x2A, "ROL", Accumulator, 2}, {0x26, "ROL", ZeroPage, 5}, {0x36, "ROL", ZeroPageX, 6},
		{0x2E, "ROL", Absolute, 6}, {0x3E, "ROL", AbsoluteX, 7},
		{0x6A, "ROR", Accumulator, 2}, {0x66, "ROR", ZeroPage, 5}, {0x76, "ROR", ZeroPageX, 6},
		{0x6E, "ROR", Absolute, 6}, {0x7E, "ROR", AbsoluteX, 7},
		// SBC
		{0xE9, "SBC", Immediate, 2}, {0xE5, "SBC", ZeroPage, 3}, {0xF5, "SBC", ZeroPageX, 4},
		{0xED, "SBC", Absolute, 4}, {0xFD, "SBC", AbsoluteX, 4}, {0xF9, "SBC", AbsoluteY, 4},
		{0xE1, "SBC", IndexedIndirect, 6}, {0xF1, "SBC", IndirectIndexed, 5}, {0xEB, "SBC", Immediate, 2},
		// STA/STX/STY
		{0x85, "STA", ZeroPage, 3}, {0x95, "STA", ZeroPageX, 4}, {0x8D, "STA", Absolute, 4},
		{0x9D, "STA", AbsoluteX, 5}, {0x99, "STA", AbsoluteY, 5}, {0x81, "STA", IndexedIndirect, 6}, {0x91, "STA", IndirectIndexed, 6},
		{0x86, "STX", ZeroPage, 3}, {0x96, "STX", ZeroPageY, 4}, {0x8E, "STX", Absolute, 4},
		{0x84, "STY", ZeroPage, 3}, {0x94, "STY", ZeroPageX, 4}, {0x8C, "STY", Absolute, 4},
		// transfers
		{0xAA, "TAX", Implied, 2}, {0xA8, "TAY", Implied, 2}, {0xBA, "TSX", Implied, 2},
		{0x8A, "TXA", Implied, 2}, {0x9A, "TXS", Implied, 2}, {0x98, "TYA", Implied, 2},

		// unofficial / undocumented opcodes: NOPs that still consume their bytes.
		{0x1A, "NOP", Implied, 2}, {0x3A, "NOP", Implied, 2}, {0x5A, "NOP", Implied, 2},
		{0x7A, "NOP", Implied, 2}, {0xDA, "NOP", Implied, 2}, {0xFA, "NOP", Implied, 2},
		{0x80, "NOP", Immediate, 2}, {0x82, "NOP", Immediate, 2}, {0x89, "NOP", Immediate, 2},
		{0xC2, "NOP", Immediate, 2}, {0xE2, "NOP", Immediate, 2},
		{0x04, "NOP", ZeroPage, 3}, {0x44, "NOP", ZeroPage, 3}, {0x64, "NOP", ZeroPage, 3},
		{0x14, "NOP", ZeroPageX, 4}, {0x34, "NOP", ZeroPageX, 4}, {0x54, "NOP", ZeroPageX, 4},
		{0x74, "NOP", ZeroPageX, 4}, {0xD4, "NOP", ZeroPageX, 4}, {0xF4, "NOP", ZeroPageX, 4},
		{0x0C, "NOP", Absolute, 4},
		{0x1C, "NOP", AbsoluteX, 4}, {0x3C, "NOP", AbsoluteX, 4}, {0x5C, "NOP", AbsoluteX, 4},
		{0x7C, "NOP", AbsoluteX, 4}, {0xDC, "NOP", AbsoluteX, 4}, {0xFC, "NOP", AbsoluteX, 4},
		// LAX
		{0xA7, "LAX", ZeroPage, 3}, {0xB7, "LAX", ZeroPageY, 4}, {0xAF, "LAX", Absolute, 4},
		{0xBF, "LAX", AbsoluteY, 4}, {0xA3, "LAX", IndexedIndirect, 6}, {0xB3, "LAX", IndirectIndexed, 5},
		// SAX
		{0x87, "SAX", ZeroPage, 3}, {0x97, "SAX", ZeroPageY, 4}, {0x8F, "SAX", Absolute, 4}, {0x83, "SAX", IndexedIndirect, 6},
		// DCP
		{0xC7, "DCP", ZeroPage, 5}, {0xD7, "DCP", ZeroPageX, 6}, {0xCF, "DCP", Absolute, 6},
		{0xDF, "DCP", AbsoluteX, 7}, {0xDB, "DCP", AbsoluteY, 7}, {0xC3, "DCP", IndexedIndirect, 8}, {0xD3, "DCP", IndirectIndexed, 8},
		// ISB/ISC
		{0xE7, "ISB", ZeroPage, 5}, {0xF7, "ISB", ZeroPageX, 6}, {0xEF, "ISB", Absolute, 6},
		{0xFF, "ISB", AbsoluteX, 7}, {0xFB, "ISB", AbsoluteY, 7}, {0xE3, "ISB", IndexedIndirect, 8}, {0xF3, "ISB", IndirectIndexed, 8},
		// SLO
		{0x07, "SLO", ZeroPage, 5}, {0x17, "SLO", ZeroPageX, 6}, {0x0F, "SLO", Absolute, 6},
		{0x1F, "SLO", AbsoluteX, 7}, {0x1B, "SLO", AbsoluteY, 7}, {0x03, "SLO", IndexedIndirect, 8}, {0x13, "SLO", IndirectIndexed, 8},
		// RLA
		{0x27, "RLA", ZeroPage, 5}, {0x37, "RLA", ZeroPageX, 6}, {0x2F, "RLA", Absolute, 6},
		{0x3F, "RLA", AbsoluteX, 7}, {0x3B, "RLA", AbsoluteY, 7}, {0x23, "RLA", IndexedIndirect, 8}, {0x33, "RLA", IndirectIndexed, 8},
		// SRE
		{0x47, "SRE", ZeroPage, 5}, {0x57, "SRE", ZeroPageX, 6}, {0x4F, "SRE", Absolute, 6},
		{0x5F, "SRE", AbsoluteX, 7}, {0x5B, "SRE", AbsoluteY, 7}, {0x43, "SRE", IndexedIndirect, 8}, {0x53, "SRE", IndirectIndexed, 8},
		// RRA
		{0x67, "RRA", ZeroPage, 5}, {0x77, "RRA", ZeroPageX, 6}, {0x6F, "RRA", Absolute, 6},
		{0x7F, "RRA", AbsoluteX, 7}, {0x7B, "RRA", AbsoluteY, 7}, {0x63, "RRA", IndexedIndirect, 8}, {0x73, "RRA", IndirectIndexed, 8},
	}
	for _, it := range entries {
		c.table[it.op] = opcodeInfo{name: it.name, mode: it.mode, cycles: it.cycles}
	}
}

// execute dispatches on the decoded mnemonic and returns any extra cycles
// (page-cross or branch-taken penalties) beyond the table's base count.
func (c *CPU) execute(opcode uint8, mode AddressingMode, addr uint16, pageCrossed bool) uint32 {
	info := c.table[opcode]
	readOperand := func() uint8 {
		if mode == Accumulator {
			return c.A
		}
		return c.bus.Read(addr)
	}

	switch info.name {
	case "ADC":
		c.adc(readOperand())
		return readBonus(mode, pageCrossed)
	case "SBC":
		c.adc(^readOperand())
		return readBonus(mode, pageCrossed)
	case "AND":
		c.A &= readOperand()
		c.setZN(c.A)
		return readBonus(mode, pageCrossed)
	case "ORA":
		c.A |= readOperand()
		c.setZN(c.A)
		return readBonus(mode, pageCrossed)
	case "EOR":
		c.A ^= readOperand()
		c.setZN(c.A)
		return readBonus(mode, pageCrossed)
	case "CMP":
		c.compare(c.A, readOperand())
		return readBonus(mode, pageCrossed)
	case "CPX":
		c.compare(c.X, readOperand())
		return 0
	case "CPY":
		c.compare(c.Y, readOperand())
		return 0
	case "BIT":
		v := readOperand()
		c.setFlag(FlagZero, c.A&v == 0)
		c.setFlag(FlagNegative, v&0x80 != 0)
		c.setFlag(FlagOverflow, v&0x40 != 0)
		return 0
	case "LDA":
		c.A = readOperand()
		c.setZN(c.A)
		return readBonus(mode, pageCrossed)
	case "LDX":
		c.X = readOperand()
		c.setZN(c.X)
		return readBonus(mode, pageCrossed)
	case "LDY":
		c.Y = readOperand()
		c.setZN(c.Y)
		return readBonus(mode, pageCrossed)
	case "LAX":
		v := readOperand()
		c.A, c.X = v, v
		c.setZN(v)
		return readBonus(mode, pageCrossed)
	case "STA":
		c.bus.Write(addr, c.A)
		return 0
	case "STX":
		c.bus.Write(addr, c.X)
		return 0
	case "STY":
		c.bus.Write(addr, c.Y)
		return 0
	case "SAX":
		c.bus.Write(addr, c.A&c.X)
		return 0
	case "ASL":
		v := readOperand()
		c.setFlag(FlagCarry, v&0x80 != 0)
		v <<= 1
		c.storeShift(mode, addr, v)
		return 0
	case "LSR":
		v := readOperand()
		c.setFlag(FlagCarry, v&0x01 != 0)
		v >>= 1
		c.storeShift(mode, addr, v)
		return 0
	case "ROL":
		v := readOperand()
		carryIn := c.getFlag(FlagCarry)
		c.setFlag(FlagCarry, v&0x80 != 0)
		v <<= 1
		if carryIn {
			v |= 0x01
		}
		c.storeShift(mode, addr, v)
		return 0
	case "ROR":
		v := readOperand()
		carryIn := c.getFlag(FlagCarry)
		c.setFlag(FlagCarry, v&0x01 != 0)
		v >>= 1
		if carryIn {
			v |= 0x80
		}
		c.storeShift(mode, addr, v)
		return 0
	case "INC":
		v := c.bus.Read(addr) + 1
		c.bus.Write(addr, v)
		c.setZN(v)
		return 0
	case "DEC":
		v := c.bus.Read(addr) - 1
		c.bus.Write(addr, v)
		c.setZN(v)
		return 0
	case "INX":
		c.X++
		c.setZN(c.X)
		return 0
	case "INY":
		c.Y++
		c.setZN(c.Y)
		return 0
	case "DEX":
		c.X--
		c.setZN(c.X)
		return 0
	case "DEY":
		c.Y--
		c.setZN(c.Y)
		return 0
	case "TAX":
		c.X = c.A
		c.setZN(c.X)
		return 0
	case "TAY":
		c.Y = c.A
		c.setZN(c.Y)
		return 0
	case "TXA":
		c.A = c.X
		c.setZN(c.A)
		return 0
	case "TYA":
		c.A = c.Y
		c.setZN(c.A)
		return 0
	case "TSX":
		c.X = c.SP
		c.setZN(c.X)
		return 0
	case "TXS":
		c.SP = c.X
		return 0
	case "PHA":
		c.push(c.A)
		return 0
	case "PHP":
		c.push(c.P | FlagBreak | FlagUnused)
		return 0
	case "PLA":
		c.A = c.pop()
		c.setZN(c.A)
		return 0
	case "PLP":
		running := c.P & (FlagBreak | FlagUnused)
		c.P = (c.pop() &^ (FlagBreak | FlagUnused)) | running
		return 0
	case "CLC":
		c.setFlag(FlagCarry, false)
		return 0
	case "SEC":
		c.setFlag(FlagCarry, true)
		return 0
	case "CLI":
		c.setFlag(FlagIRQ, false)
		return 0
	case "SEI":
		c.setFlag(FlagIRQ, true)
		return 0
	case "CLD":
		c.setFlag(FlagDecimal, false)
		return 0
	case "SED":
		c.setFlag(FlagDecimal, true)
		return 0
	case "CLV":
		c.setFlag(FlagOverflow, false)
		return 0
	case "JMP":
		c.PC = addr
		return 0
	case "JSR":
		c.pushWord(c.PC - 1)
		c.PC = addr
		return 0
	case "RTS":
		c.PC = c.popWord() + 1
		return 0
	case "RTI":
		running := c.P & (FlagBreak | FlagUnused)
		c.P = (c.pop() &^ (FlagBreak | FlagUnused)) | running
		c.PC = c.popWord()
		return 0
	case "BRK":
		c.PC++ // skip the signature byte after BRK
		c.serviceInterrupt(0xFFFE, true)
		return 0
	case "BCC":
		return c.branch(!c.getFlag(FlagCarry), addr)
	case "BCS":
		return c.branch(c.getFlag(FlagCarry), addr)
	case "BEQ":
		return c.branch(c.getFlag(FlagZero), addr)
	case "BNE":
		return c.branch(!c.getFlag(FlagZero), addr)
	case "BMI":
		return c.branch(c.getFlag(FlagNegative), addr)
	case "BPL":
		return c.branch(!c.getFlag(FlagNegative), addr)
	case "BVC":
		return c.branch(!c.getFlag(FlagOverflow), addr)
	case "BVS":
		return c.branch(c.getFlag(FlagOverflow), addr)
	case "NOP":
		return 0
	case "DCP":
		v := c.bus.Read(addr) - 1
		c.bus.Write(addr, v)
		c.compare(c.A, v)
		return 0
	case "ISB":
		v := c.bus.Read(addr) + 1
		c.bus.Write(addr, v)
		c.adc(^v)
		return 0
	case "SLO":
		v := c.bus.Read(addr)
		c.setFlag(FlagCarry, v&0x80 != 0)
		v <<= 1
		c.bus.Write(addr, v)
		c.A |= v
		c.setZN(c.A)
		return 0
	case "RLA":
		v := c.bus.Read(addr)
		carryIn := c.getFlag(FlagCarry)
		c.setFlag(FlagCarry, v&0x80 != 0)
		v <<= 1
		if carryIn {
			v |= 0x01
		}
		c.bus.Write(addr, v)
		c.A &= v
		c.setZN(c.A)
		return 0
	case "SRE":
		v := c.bus.Read(addr)
		c.setFlag(FlagCarry, v&0x01 != 0)
		v >>= 1
		c.bus.Write(addr, v)
		c.A ^= v
		c.setZN(c.A)
		return 0
	case "RRA":
		v := c.bus.Read(addr)
		carryIn := c.getFlag(FlagCarry)
		c.setFlag(FlagCarry, v&0x01 != 0)
		v >>= 1
		if carryIn {
			v |= 0x80
		}
		c.bus.Write(addr, v)
		c.adc(v)
		return 0
	}
	return 0
}

// readBonus reports the +1 cycle penalty for indexed/indirect-indexed
// reads that cross a page boundary; stores never take this penalty because
// the caller only invokes readBonus from read-only opcodes.
func readBonus(mode AddressingMode, pageCrossed bool) uint32 {
	switch mode {
	case AbsoluteX, AbsoluteY, IndirectIndexed:
		return pageCrossPenalty(pageCrossed)
	}
	return 0
}

// storeShift writes a shift/rotate result back to the accumulator or
// memory depending on addressing mode, and updates Z/N from the result.
func (c *CPU) storeShift(mode AddressingMode, addr uint16, v uint8) {
	if mode == Accumulator {
		c.A = v
	} else {
		c.bus.Write(addr, v)
	}
	c.setZN(v)
}

// adc implements ADC (and, via one's-complement operand, SBC): r = A +
// operand + C. Carry is bit 8 of the 9-bit result; overflow is set when A
// and operand share a sign that differs from the result's sign.
func (c *CPU) adc(operand uint8) {
	carryIn := uint16(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	a := uint16(c.A)
	o := uint16(operand)
	result := a + o + carryIn
	c.setFlag(FlagCarry, result > 0xFF)
	r8 := uint8(result)
	overflow := (^(a ^ o) & (a ^ result) & 0x80) != 0
	c.setFlag(FlagOverflow, overflow)
	c.A = r8
	c.setZN(c.A)
}

// compare implements CMP/CPX/CPY: r = reg - operand, carry set iff reg >=
// operand, Z/N taken from the low 8 bits of r.
func (c *CPU) compare(reg, operand uint8) {
	r := reg - operand
	c.setFlag(FlagCarry, reg >= operand)
	c.setZN(r)
}

// branch applies a relative-addressing branch, returning the cycle
// penalty: +1 if taken, plus another +1 if the branch crosses a page.
func (c *CPU) branch(take bool, target uint16) uint32 {
	if !take {
		return 0
	}
	crossed := (c.PC & 0xFF00) != (target & 0xFF00)
	c.PC = target
	if crossed {
		return 2
	}
	return 1
}
