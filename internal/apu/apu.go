// Package apu sinks writes to the audio registers ($4000-$4013, $4015).
// Audio synthesis is explicitly out of scope for the core; this package
// exists so the bus has a uniform decode target for that register range
// instead of special-casing it inline.
package apu

// APU accepts and discards writes to the audio register file and reports
// a quiescent status byte on reads of $4015.
type APU struct{}

// New constructs an APU register sink.
func New() *APU { return &APU{} }

// WriteRegister accepts a write to $4000-$4013 or $4015 and ignores it.
func (a *APU) WriteRegister(address uint16, value uint8) {}

// ReadStatus services a read of $4015. No channel is ever implemented, so
// every status bit reads back clear.
func (a *APU) ReadStatus() uint8 { return 0 }

// Reset is a no-op; kept so callers can treat the APU like the other
// subsystems during a system reset.
func (a *APU) Reset() {}
