// Package ppu implements the picture processor: background and sprite
// rendering, the shared-with-CPU scroll/address registers, and the
// vertical-blank interrupt.
package ppu

// Cartridge is the PPU's view of the loaded cartridge: pattern memory and
// nametable mirroring, both mapper responsibilities.
type Cartridge interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	MirrorNametable(index uint16) uint16
}

// Control register (PPUCTRL, $2000) bit masks.
const (
	ctrlNametableMask  = 0x03
	ctrlVRAMIncrement  = 0x04
	ctrlSpriteBase     = 0x08
	ctrlBackgroundBase = 0x10
	ctrlSpriteSize     = 0x20
	ctrlMasterSlave    = 0x40
	ctrlNMIEnable      = 0x80
)

// Mask register (PPUMASK, $2001) bit masks.
const (
	maskGreyscale       = 0x01
	maskShowLeftBG      = 0x02
	maskShowLeftSprites = 0x04
	maskBackground      = 0x08
	maskSprites         = 0x10
)

// Status register (PPUSTATUS, $2002) bit masks.
const (
	statusOverflow = 0x20
	statusSprite0  = 0x40
	statusVblank   = 0x80
)

// PPU holds all picture-processor state: registers, OAM, the internal
// scroll/address latches, and the framebuffer it renders into.
type PPU struct {
	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	v, t       uint16
	x          uint8
	w          bool
	readBuffer uint8

	scanline int
	dot      int

	nametableRAM [2048]uint8
	paletteRAM   [32]uint8

	Framebuffer [256 * 240]uint32
	bgOpaque    [256 * 240]bool

	cart        Cartridge
	requestNMI  func()
}

// New constructs a PPU wired to the given cartridge. nmiCallback is
// invoked once per frame at vblank entry when nmi-enable is set in ctrl;
// the core wires it to the CPU's RequestNMI.
func New(cart Cartridge, nmiCallback func()) *PPU {
	return &PPU{cart: cart, requestNMI: nmiCallback}
}

// Reset returns the PPU to its post-power-up state.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.v, p.t, p.x = 0, 0, 0
	p.w = false
	p.readBuffer = 0
	p.scanline, p.dot = 0, 0
}

// Tick advances the PPU by 3*cpuCycles dots, firing scanline transitions
// whenever the dot accumulator crosses 341.
func (p *PPU) Tick(cpuCycles uint32) {
	dots := int(cpuCycles) * 3
	for i := 0; i < dots; i++ {
		p.dot++
		if p.dot >= 341 {
			p.dot = 0
			p.advanceScanline()
		}
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskBackground|maskSprites) != 0
}

func (p *PPU) advanceScanline() {
	switch {
	case p.scanline >= 0 && p.scanline <= 239:
		if p.renderingEnabled() {
			p.renderScanline(p.scanline)
		}
		p.scanline++
	case p.scanline == 240:
		p.status |= statusVblank
		p.status &^= statusSprite0
		if p.ctrl&ctrlNMIEnable != 0 && p.requestNMI != nil {
			p.requestNMI()
		}
		p.scanline++
	case p.scanline >= 241 && p.scanline <= 260:
		p.scanline++
	default: // 261, pre-render
		p.status &^= (statusVblank | statusSprite0 | statusOverflow)
		if p.renderingEnabled() {
			p.v = (p.v & 0x041F) | (p.t & 0x7BE0)
		}
		p.scanline = 0
	}
}

// ReadRegister services a CPU read of the PPU register file at $2000-$2007
// (decoded by the bus as addr&7).
func (p *PPU) ReadRegister(reg uint8) uint8 {
	switch reg & 7 {
	case 2:
		v := p.status
		p.status &^= statusVblank
		p.w = false
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData()
	default:
		return 0
	}
}

// WriteRegister services a CPU write to the PPU register file.
func (p *PPU) WriteRegister(reg uint8, value uint8) {
	switch reg & 7 {
	case 0:
		p.ctrl = value
		p.t = (p.t & 0x73FF) | (uint16(value&0x03) << 10)
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writeData(value)
	}
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0x7FE0) | uint16(value>>3)
		p.x = value & 7
		p.w = true
		return
	}
	p.t = (p.t & 0x0C1F) | (uint16(value&0x07) << 12) | (uint16(value&0xF8) << 2)
	p.w = false
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(value&0x3F) << 8)
		p.w = true
		return
	}
	p.t = (p.t & 0xFF00) | uint16(value)
	p.v = p.t
	p.w = false
}

func (p *PPU) readData() uint8 {
	addr := p.v
	var result uint8
	if addr <= 0x3EFF {
		result = p.readBuffer
		p.readBuffer = p.ppuRead(addr)
	} else {
		result = p.ppuRead(addr)
		p.readBuffer = p.ppuRead(addr - 0x1000)
	}
	p.incrementAddr()
	return result
}

func (p *PPU) writeData(value uint8) {
	p.ppuWrite(p.v, value)
	p.incrementAddr()
}

func (p *PPU) incrementAddr() {
	if p.ctrl&ctrlVRAMIncrement != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

// ppuRead decodes the 14-bit PPU bus: pattern memory through the mapper,
// nametables through mirroring, and the 32-byte palette with its four
// background-color aliases.
func (p *PPU) ppuRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return p.nametableRAM[p.cart.MirrorNametable((addr-0x2000)&0x0FFF)]
	default:
		return p.paletteRAM[paletteIndex(addr)]
	}
}

func (p *PPU) ppuWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.WriteCHR(addr, value)
	case addr < 0x3F00:
		p.nametableRAM[p.cart.MirrorNametable((addr-0x2000)&0x0FFF)] = value
	default:
		p.paletteRAM[paletteIndex(addr)] = value
	}
}

func paletteIndex(addr uint16) uint16 {
	idx := (addr - 0x3F00) & 0x1F
	if idx&0x13 == 0x10 { // $3F10/$14/$18/$1C alias $3F00/$04/$08/$0C
		idx &^= 0x10
	}
	return idx
}
