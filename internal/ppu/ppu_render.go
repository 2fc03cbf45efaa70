package ppu

// renderScanline draws one visible scanline (0..239): background tiles
// first, then sprites composited on top per the priority/sprite-0 rules.
func (p *PPU) renderScanline(y int) {
	if p.mask&maskBackground != 0 {
		p.renderBackground(y)
	} else {
		p.fillBackdrop(y)
	}
	if p.mask&maskSprites != 0 {
		p.renderSprites(y)
	}
}

func (p *PPU) fillBackdrop(y int) {
	color := nesColorPalette[p.paletteRAM[0]&0x3F]
	for x := 0; x < 256; x++ {
		p.Framebuffer[y*256+x] = color
		p.bgOpaque[y*256+x] = false
	}
}

// renderBackground fetches and draws 33 8-pixel tile slices, advancing the
// scroll register v exactly as real hardware does: coarse-X increment
// after each slice, vertical increment and horizontal reload after the
// full row.
func (p *PPU) renderBackground(y int) {
	bgBase := uint16(0)
	if p.ctrl&ctrlBackgroundBase != 0 {
		bgBase = 0x1000
	}

	for slice := 0; slice < 33; slice++ {
		tile := p.ppuRead(0x2000 | (p.v & 0x0FFF))
		attr := p.ppuRead(0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07))
		fineY := uint16(p.v>>12) & 7

		planeLo := p.ppuRead(bgBase + uint16(tile)*16 + fineY)
		planeHi := p.ppuRead(bgBase + uint16(tile)*16 + fineY + 8)

		shift := ((p.v >> 4) & 4) | (p.v & 2)
		paletteHigh := (attr >> shift) & 3

		for px := 0; px < 8; px++ {
			screenX := slice*8 + px - int(p.x)
			if screenX < 0 || screenX >= 256 {
				continue
			}
			bit := 7 - px
			lo := (planeLo >> uint(bit)) & 1
			hi := (planeHi >> uint(bit)) & 1
			pixel := (hi << 1) | lo

			var color uint32
			opaque := pixel != 0
			if !opaque {
				color = nesColorPalette[p.paletteRAM[0]&0x3F]
			} else {
				idx := (paletteHigh << 2) | pixel
				color = nesColorPalette[p.paletteRAM[idx]&0x3F]
			}
			p.Framebuffer[y*256+screenX] = color
			p.bgOpaque[y*256+screenX] = opaque
		}

		p.incrementCoarseX()
	}

	p.incrementFineY()
	p.reloadHorizontal()
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementFineY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v & 0x03E0) >> 5
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

func (p *PPU) reloadHorizontal() {
	p.v = (p.v & 0x7BE0) | (p.t & 0x041F)
}

type spriteSlot struct {
	oamIndex int
	y        uint8
	tile     uint8
	attr     uint8
	x        uint8
}

// renderSprites evaluates the up to 8 sprites visible on scanline y
// (setting sprite overflow on a 9th candidate) and composites them over
// the background per OAM order, honoring priority and sprite-0 hit.
func (p *PPU) renderSprites(y int) {
	height := 8
	if p.ctrl&ctrlSpriteSize != 0 {
		height = 16
	}

	var selected []spriteSlot
	for i := 0; i < 64; i++ {
		base := i * 4
		spriteY := p.oam[base]
		top := int(spriteY) + 1
		if y < top || y >= top+height {
			continue
		}
		if len(selected) == 8 {
			p.status |= statusOverflow
			break
		}
		selected = append(selected, spriteSlot{
			oamIndex: i,
			y:        spriteY,
			tile:     p.oam[base+1],
			attr:     p.oam[base+2],
			x:        p.oam[base+3],
		})
	}

	for _, s := range selected {
		row := y - (int(s.y) + 1)
		vFlip := s.attr&0x80 != 0
		if vFlip {
			row = height - 1 - row
		}

		var patternBase uint16
		var patternRow int
		if height == 16 {
			patternBase = (uint16(s.tile&1) * 0x1000) + (uint16(s.tile&0xFE) << 4)
			if row >= 8 {
				patternBase += 16
				patternRow = row - 8
			} else {
				patternRow = row
			}
		} else {
			patternBase = uint16(0)
			if p.ctrl&ctrlSpriteBase != 0 {
				patternBase = 0x1000
			}
			patternBase += uint16(s.tile) << 4
			patternRow = row
		}

		planeLo := p.ppuRead(patternBase + uint16(patternRow))
		planeHi := p.ppuRead(patternBase + uint16(patternRow) + 8)
		hFlip := s.attr&0x40 != 0
		behind := s.attr&0x20 != 0
		paletteHigh := s.attr & 0x03

		for px := 0; px < 8; px++ {
			bit := px
			if !hFlip {
				bit = 7 - px
			}
			lo := (planeLo >> uint(bit)) & 1
			hi := (planeHi >> uint(bit)) & 1
			pixel := (hi << 1) | lo
			if pixel == 0 {
				continue
			}

			screenX := int(s.x) + px
			if screenX >= 256 {
				continue
			}
			idx := y*256 + screenX
			bgOpaque := p.bgOpaque[idx]

			if s.oamIndex == 0 && bgOpaque && screenX != 255 {
				p.status |= statusSprite0
			}

			if behind && bgOpaque {
				continue
			}
			color := nesColorPalette[p.paletteRAM[0x10+(paletteHigh<<2)+pixel]&0x3F]
			p.Framebuffer[idx] = color
		}
	}
}
