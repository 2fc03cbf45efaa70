package cartridge

// bankedMapper implements mapper 1: a four-register banked mapper
// programmed through a 5-bit serial shift register, modeled on the
// control/chr0/chr1/prg register layout of original_source's MMC1
// implementation (cartridge/mappers/mmc1.rs).
type bankedMapper struct {
	cart *Cartridge

	prgROMBanks uint8 // number of 16 KiB PRG banks
	chrBanks    uint8 // number of 4 KiB CHR banks (2 for the 8 KiB of CHR RAM)

	shiftRegister uint8
	shiftCount    uint8

	control uint8
	chr0    uint8
	chr1    uint8
	prg     uint8
}

func newBankedMapper(cart *Cartridge) *bankedMapper {
	return &bankedMapper{
		cart:          cart,
		prgROMBanks:   uint8(len(cart.prgROM) / 0x4000),
		chrBanks:      uint8(len(cart.chrROM) / 0x1000),
		shiftRegister: 0x10,
		control:       0x0C,
	}
}

func (m *bankedMapper) mirrorMode() uint8 { return m.control & 0x3 }
func (m *bankedMapper) prgMode() uint8    { return (m.control >> 2) & 0x3 }
func (m *bankedMapper) chrMode() uint8    { return (m.control >> 4) & 0x1 }

// ReadPRG decodes the 32 KiB CPU PRG window (offset 0x2000..0xA000 over
// SRAM+ROM, per the cartridge-wide offset convention) according to the
// current PRG banking mode.
func (m *bankedMapper) ReadPRG(offset uint16) uint8 {
	if offset < 0x2000 {
		return m.cart.sram[offset]
	}
	addr := offset - 0x2000 // 0..0x7FFF within the 32 KiB ROM window
	bank := uint32(m.prg & 0x0F)
	switch m.prgMode() {
	case 0, 1:
		bankAddr := (bank &^ 1) * 0x4000 // 32 KiB bank, even bank number
		return m.romByte(bankAddr + uint32(addr))
	case 2:
		if addr < 0x4000 {
			return m.romByte(uint32(addr)) // bank 0 fixed at $8000
		}
		return m.romByte(bank*0x4000 + uint32(addr-0x4000))
	default: // case 3
		if addr < 0x4000 {
			return m.romByte(bank*0x4000 + uint32(addr))
		}
		last := uint32(m.prgROMBanks) - 1
		return m.romByte(last*0x4000 + uint32(addr-0x4000))
	}
}

func (m *bankedMapper) romByte(addr uint32) uint8 {
	if int(addr) < len(m.cart.prgROM) {
		return m.cart.prgROM[addr]
	}
	return 0
}

func (m *bankedMapper) WritePRG(offset uint16, value uint8) {
	if offset < 0x2000 {
		m.cart.sram[offset] = value
		return
	}
	if value&0x80 != 0 {
		m.shiftRegister = 0x10
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shiftRegister = (m.shiftRegister >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount != 5 {
		return
	}

	// The fifth write selects the destination register by bits 13-14 of
	// the CPU-relative PRG address, per the mapper's literal register map.
	cpuOffset := offset - 0x2000 // 0..0x7FFF
	switch (cpuOffset >> 13) & 3 {
	case 0:
		m.control = m.shiftRegister
	case 1:
		m.chr0 = m.shiftRegister
	case 2:
		m.chr1 = m.shiftRegister
	case 3:
		m.prg = m.shiftRegister
	}
	m.shiftRegister = 0x10
	m.shiftCount = 0
}

func (m *bankedMapper) ReadCHR(offset uint16) uint8 {
	addr := m.chrAddress(offset)
	if int(addr) < len(m.cart.chrROM) {
		return m.cart.chrROM[addr]
	}
	return 0
}

func (m *bankedMapper) WriteCHR(offset uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	addr := m.chrAddress(offset)
	if int(addr) < len(m.cart.chrROM) {
		m.cart.chrROM[addr] = value
	}
}

func (m *bankedMapper) chrAddress(offset uint16) uint32 {
	if m.chrMode() == 0 {
		bank := uint32(m.chr0 &^ 1)
		return bank*0x1000 + uint32(offset)
	}
	if offset < 0x1000 {
		return uint32(m.chr0)*0x1000 + uint32(offset)
	}
	return uint32(m.chr1)*0x1000 + uint32(offset-0x1000)
}

// MirrorNametable follows the banked mapper's dynamically switched
// mirroring mode, taken bit-for-bit from original_source's
// get_namespace_mirrored_address.
func (m *bankedMapper) MirrorNametable(index uint16) uint16 {
	base := index & 0x3FF
	switch m.mirrorMode() {
	case 0:
		return base
	case 1:
		return 0x400 | base
	case 2:
		return (index & 0x400) | base
	default: // 3
		return ((index & 0x800) >> 1) | base
	}
}
