package syntax

import (
	"testing"

	"github.com/xvc-go/xvccore/pic"
)

func TestBitCounterAccumulates(t *testing.T) {
	w := NewBitCounter()
	w.WriteCbf(true, pic.Luma)
	w.WriteRootCbf(false)
	w.WriteEndOfSlice(true)

	if got := w.GetFractionalBits(); got != cbfCost+rootCbfCost+endOfSliceCost {
		t.Fatalf("GetFractionalBits() = %d, want %d", got, cbfCost+rootCbfCost+endOfSliceCost)
	}
	if got := w.GetNumWrittenBits(); got != 3 {
		t.Fatalf("GetNumWrittenBits() = %d, want 3", got)
	}
}

func TestBitCounterResetBitCounting(t *testing.T) {
	w := NewBitCounter()
	w.WriteRootCbf(true)
	w.ResetBitCounting()
	if w.GetFractionalBits() != 0 {
		t.Fatal("ResetBitCounting must zero the counter")
	}
}

func TestWriteQpAdaptiveChargesDelta(t *testing.T) {
	w := NewBitCounter()
	w.WriteQp(30, 28, true)
	want := uint32(qpFlagCost + 2*qpDeltaUnit)
	if got := w.GetFractionalBits(); got != want {
		t.Fatalf("WriteQp(30,28,true) = %d bits, want %d", got, want)
	}

	w2 := NewBitCounter()
	w2.WriteQp(30, 28, false)
	if got := w2.GetFractionalBits(); got != qpFlagCost {
		t.Fatalf("WriteQp with adaptiveMode=false = %d, want %d", got, qpFlagCost)
	}
}

func TestRealWriterMatchesBitCounterCost(t *testing.T) {
	real := NewRealWriter()
	counted := NewBitCounter()

	for _, w := range []Writer{real, counted} {
		w.WriteCbf(true, pic.Cb)
		w.WriteRootCbf(true)
		w.WriteQp(24, 22, true)
		w.WriteEndOfSlice(false)
	}

	if real.GetFractionalBits() != counted.GetFractionalBits() {
		t.Fatalf("real=%d counted=%d, want equal (strict bit-counting invariant)",
			real.GetFractionalBits(), counted.GetFractionalBits())
	}
	if len(real.Bytes) == 0 {
		t.Fatal("RealWriter should have emitted bytes")
	}
}

func TestRealWriterResetBitCounting(t *testing.T) {
	w := NewRealWriter()
	w.WriteRootCbf(true)
	w.ResetBitCounting()
	if w.GetFractionalBits() != 0 || len(w.Bytes) != 0 {
		t.Fatal("ResetBitCounting must clear both bit count and bytes")
	}
}
