package cartridge

import (
	"bytes"
	"errors"
	"testing"
)

func buildINES(prgPages, chrPages int, flags6, flags7 uint8, prgFill, chrFill uint8) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, byte(prgPages), byte(chrPages), flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	buf := append([]byte{}, header...)
	prg := bytes.Repeat([]byte{prgFill}, prgPages*16384)
	buf = append(buf, prg...)
	chr := bytes.Repeat([]byte{chrFill}, chrPages*8192)
	buf = append(buf, chr...)
	return buf
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader(make([]byte, 32)))
	if !errors.Is(err, ErrInvalidRomHeader) {
		t.Fatalf("got %v, want ErrInvalidRomHeader", err)
	}
}

func TestLoadFromReaderRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 0xF0, 0x00, 0xAA, 0xBB) // mapper 15
	_, err := LoadFromReader(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedMapper) {
		t.Fatalf("got %v, want ErrUnsupportedMapper", err)
	}
}

func TestNromMirrorsSixteenKRom(t *testing.T) {
	data := buildINES(1, 1, 0x00, 0x00, 0x55, 0x11)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cart.ReadPRG(0x2000); got != 0x55 { // $8000
		t.Fatalf("$8000 = %#02x, want $55", got)
	}
	if got := cart.ReadPRG(0x6000); got != 0x55 { // $C000, mirror of $8000
		t.Fatalf("$C000 = %#02x, want $55 (mirrored)", got)
	}
}

func TestNromMirroringModes(t *testing.T) {
	horiz := buildINES(1, 1, 0x00, 0x00, 0, 0)
	cart, _ := LoadFromReader(bytes.NewReader(horiz))
	if cart.MirrorNametable(0x000) != cart.MirrorNametable(0x400) {
		t.Fatalf("horizontal: $2000 and $2400 should alias")
	}
	if cart.MirrorNametable(0x800) != cart.MirrorNametable(0xC00) {
		t.Fatalf("horizontal: $2800 and $2C00 should alias")
	}

	vert := buildINES(1, 1, 0x01, 0x00, 0, 0)
	cart2, _ := LoadFromReader(bytes.NewReader(vert))
	if cart2.MirrorNametable(0x000) != cart2.MirrorNametable(0x800) {
		t.Fatalf("vertical: $2000 and $2800 should alias")
	}
	if cart2.MirrorNametable(0x400) != cart2.MirrorNametable(0xC00) {
		t.Fatalf("vertical: $2400 and $2C00 should alias")
	}
}

func TestBankedMapperShiftRegisterProgramsControl(t *testing.T) {
	data := buildINES(4, 0, 0x11, 0x00, 0, 0) // mapper 1, 64KiB PRG, CHR RAM
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Program control register = 0x0F (horizontal/fix-last/8K CHR) via 5
	// single-bit writes, LSB first.
	value := uint8(0x0F)
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		cart.WritePRG(0x2000, bit) // any $8000-$9FFF address selects control
	}
	m := cart.mapper.(*bankedMapper)
	if m.control != 0x0F {
		t.Fatalf("control = %#02x, want $0F", m.control)
	}
}

func TestBankedMapperResetBitClearsShiftAndSetsControl(t *testing.T) {
	data := buildINES(4, 0, 0x11, 0x00, 0, 0) // mapper 1
	cart, _ := LoadFromReader(bytes.NewReader(data))
	cart.WritePRG(0x2000, 0x80)
	m := cart.mapper.(*bankedMapper)
	if m.shiftRegister != 0x10 || m.shiftCount != 0 {
		t.Fatalf("reset write did not clear shift state: reg=%#02x count=%d", m.shiftRegister, m.shiftCount)
	}
	if m.control&0x0C == 0 {
		t.Fatalf("reset write did not OR 0x0C into control: %#02x", m.control)
	}
}
