package cpu

import "testing"

type fakeBus struct {
	ram [0x10000]uint8
	dma struct {
		page    uint8
		pending bool
	}
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(addr uint16) uint8  { return b.ram[addr] }
func (b *fakeBus) Write(addr uint16, v uint8) { b.ram[addr] = v }
func (b *fakeBus) TakeDMARequest() (uint8, bool) {
	if !b.dma.pending {
		return 0, false
	}
	b.dma.pending = false
	return b.dma.page, true
}

func TestResetVector(t *testing.T) {
	bus := newFakeBus()
	bus.ram[0xFFFC] = 0x00
	bus.ram[0xFFFD] = 0xC0
	c := New(bus)
	c.Reset()
	if c.PC != 0xC000 {
		t.Fatalf("PC = %#04x, want $C000", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP = %#02x, want $FD", c.SP)
	}
	if c.P != 0x24 {
		t.Fatalf("P = %#02x, want $24", c.P)
	}
}

func TestLoadStoreProgram(t *testing.T) {
	bus := newFakeBus()
	prog := []uint8{0xA9, 0x42, 0x8D, 0x00, 0x02, 0x00}
	copy(bus.ram[0xC000:], prog)
	bus.ram[0xFFFC], bus.ram[0xFFFD] = 0x00, 0xC0

	c := New(bus)
	c.Reset()

	cycles, err := c.StepInstruction()
	if err != nil {
		t.Fatalf("LDA step: %v", err)
	}
	if c.A != 0x42 || cycles != 2 {
		t.Fatalf("after LDA #$42: A=%#02x cycles=%d", c.A, cycles)
	}
	if c.getFlag(FlagZero) || c.getFlag(FlagNegative) {
		t.Fatalf("unexpected flags after LDA #$42: P=%#02x", c.P)
	}

	cycles, err = c.StepInstruction()
	if err != nil {
		t.Fatalf("STA step: %v", err)
	}
	if bus.ram[0x0200] != 0x42 || cycles != 4 {
		t.Fatalf("after STA $0200: RAM=%#02x cycles=%d", bus.ram[0x0200], cycles)
	}
}

func TestStackPushPopRoundTrips(t *testing.T) {
	bus := newFakeBus()
	c := New(bus)
	c.Reset()
	for _, v := range []uint8{0x00, 0x7F, 0x80, 0xFF, 0x3C} {
		before := c.SP
		c.push(v)
		got := c.pop()
		if got != v {
			t.Fatalf("push/pop(%#02x) = %#02x", v, got)
		}
		if c.SP != before {
			t.Fatalf("SP drifted: before=%#02x after=%#02x", before, c.SP)
		}
	}
}

func TestAdcExhaustiveFlags(t *testing.T) {
	bus := newFakeBus()
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for carry := 0; carry < 2; carry++ {
				c := New(bus)
				c.Reset()
				c.A = uint8(a)
				c.setFlag(FlagCarry, carry == 1)
				c.adc(uint8(b))

				want := a + b + carry
				if int(c.A) != want&0xFF {
					t.Fatalf("adc(%d,%d,%d)=%#02x want %#02x", a, b, carry, c.A, want&0xFF)
				}
				wantCarry := want > 0xFF
				if c.getFlag(FlagCarry) != wantCarry {
					t.Fatalf("adc(%d,%d,%d) carry=%v want %v", a, b, carry, c.getFlag(FlagCarry), wantCarry)
				}
				wantZero := (want & 0xFF) == 0
				if c.getFlag(FlagZero) != wantZero {
					t.Fatalf("adc(%d,%d,%d) zero=%v want %v", a, b, carry, c.getFlag(FlagZero), wantZero)
				}
				wantNeg := want&0x80 != 0
				if c.getFlag(FlagNegative) != wantNeg {
					t.Fatalf("adc(%d,%d,%d) negative=%v want %v", a, b, carry, c.getFlag(FlagNegative), wantNeg)
				}
				av, bv, rv := uint16(a), uint16(b), uint16(want&0xFF)
				wantOverflow := (^(av^bv) & (av ^ rv) & 0x80) != 0
				if c.getFlag(FlagOverflow) != wantOverflow {
					t.Fatalf("adc(%d,%d,%d) overflow=%v want %v", a, b, carry, c.getFlag(FlagOverflow), wantOverflow)
				}
			}
		}
	}
}

func TestSbcMatchesOnesComplementAdc(t *testing.T) {
	bus := newFakeBus()
	bus.ram[0xFFFC], bus.ram[0xFFFD] = 0x00, 0xC0
	bus.ram[0xC000], bus.ram[0xC001] = 0xE9, 0x10 // SBC #$10
	c1 := New(bus)
	c1.Reset()
	c1.A = 0x50
	c1.setFlag(FlagCarry, true)
	if _, err := c1.StepInstruction(); err != nil {
		t.Fatalf("SBC step: %v", err)
	}

	c2 := New(bus)
	c2.Reset()
	c2.A = 0x50
	c2.setFlag(FlagCarry, true)
	c2.adc(0xEF) // ^0x10

	if c1.A != c2.A || c1.P != c2.P {
		t.Fatalf("sbc/adc mismatch: %#02x/%#02x vs %#02x/%#02x", c1.A, c1.P, c2.A, c2.P)
	}
}

func TestNmiServicedBeforeNextFetch(t *testing.T) {
	bus := newFakeBus()
	bus.ram[0xFFFC], bus.ram[0xFFFD] = 0x00, 0xC0
	bus.ram[0xFFFA], bus.ram[0xFFFB] = 0x00, 0xD0
	bus.ram[0xC000] = 0xEA // NOP, should not execute this step

	c := New(bus)
	c.Reset()
	c.RequestNMI()

	cycles, err := c.StepInstruction()
	if err != nil {
		t.Fatalf("nmi step: %v", err)
	}
	if cycles != 7 {
		t.Fatalf("nmi cycles = %d, want 7", cycles)
	}
	if c.PC != 0xD000 {
		t.Fatalf("PC after NMI = %#04x, want $D000", c.PC)
	}
}

func TestUnknownOpcodeStrictVsPermissive(t *testing.T) {
	bus := newFakeBus()
	bus.ram[0xFFFC], bus.ram[0xFFFD] = 0x00, 0xC0
	bus.ram[0xC000] = 0x02 // never assigned in the table

	permissive := New(bus)
	permissive.Reset()
	if _, err := permissive.StepInstruction(); err != nil {
		t.Fatalf("permissive mode returned error: %v", err)
	}

	strict := New(bus)
	strict.Reset()
	strict.Strict = true
	if _, err := strict.StepInstruction(); err == nil {
		t.Fatalf("strict mode did not report UnknownOpcode")
	}
}

func TestOamDmaCopiesThroughBus(t *testing.T) {
	bus := newFakeBus()
	bus.ram[0xFFFC], bus.ram[0xFFFD] = 0x00, 0xC0
	for i := 0; i < 256; i++ {
		bus.ram[0x0200+i] = uint8(i)
	}
	bus.dma.page = 0x02
	bus.dma.pending = true

	var written []uint8
	c := New(bus)
	c.Reset()
	// Intercept $2004 writes by wrapping bus.Write via a thin shim.
	shim := &dmaCaptureBus{fakeBus: bus, writes: &written}
	c.bus = shim

	cycles, err := c.StepInstruction()
	if err != nil {
		t.Fatalf("dma step: %v", err)
	}
	if cycles < 512 || cycles > 514 {
		t.Fatalf("dma cycles = %d, want 512-514", cycles)
	}
	if len(written) != 256 {
		t.Fatalf("dma wrote %d bytes, want 256", len(written))
	}
	for i, v := range written {
		if v != uint8(i) {
			t.Fatalf("dma byte %d = %#02x, want %#02x", i, v, i)
		}
	}
}

type dmaCaptureBus struct {
	*fakeBus
	writes *[]uint8
}

func (d *dmaCaptureBus) Write(addr uint16, v uint8) {
	if addr == 0x2004 {
		*d.writes = append(*d.writes, v)
		return
	}
	d.fakeBus.Write(addr, v)
}
