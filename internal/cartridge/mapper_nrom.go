package cartridge

// nrom implements mapper 0: no bank switching. 16 KiB ROMs mirror across
// both halves of the 32 KiB CPU window; a fixed horizontal or vertical
// mirroring mode is set at load time from the header's flag byte.
type nrom struct {
	cart     *Cartridge
	prgBanks uint8
	mirror   MirrorMode
}

func newNROM(cart *Cartridge, mirror MirrorMode) *nrom {
	return &nrom{
		cart:     cart,
		prgBanks: uint8(len(cart.prgROM) / 0x4000),
		mirror:   mirror,
	}
}

func (m *nrom) ReadPRG(offset uint16) uint8 {
	switch {
	case offset < 0x2000:
		return m.cart.sram[offset]
	default:
		o := offset - 0x2000
		if m.prgBanks == 1 {
			o &= 0x3FFF
		}
		if int(o) < len(m.cart.prgROM) {
			return m.cart.prgROM[o]
		}
		return 0
	}
}

func (m *nrom) WritePRG(offset uint16, value uint8) {
	if offset < 0x2000 {
		m.cart.sram[offset] = value
	}
	// Writes to ROM space are ignored: NROM has no mapper registers.
}

func (m *nrom) ReadCHR(offset uint16) uint8 {
	if int(offset) < len(m.cart.chrROM) {
		return m.cart.chrROM[offset]
	}
	return 0
}

func (m *nrom) WriteCHR(offset uint16, value uint8) {
	if m.cart.hasCHRRAM && int(offset) < len(m.cart.chrROM) {
		m.cart.chrROM[offset] = value
	}
}

func (m *nrom) MirrorNametable(index uint16) uint16 {
	nametable := (index >> 10) & 3
	inTable := index & 0x3FF
	switch m.mirror {
	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 | inTable
		}
		return inTable
	case MirrorSingleLower:
		return inTable
	case MirrorSingleUpper:
		return 0x400 | inTable
	case MirrorFourScreen:
		// Four-screen is out of scope; treated as vertical per spec.
		if nametable == 1 || nametable == 3 {
			return 0x400 | inTable
		}
		return inTable
	default: // MirrorHorizontal
		if nametable >= 2 {
			return 0x400 | inTable
		}
		return inTable
	}
}
