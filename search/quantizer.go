package search

// Quantizer is the forward/inverse quantizer contract (§6): a pure
// function from a coefficient block and a per-component inverse-scale
// step (pic.QP.InverseScale) to quantized levels and back.
type Quantizer interface {
	// Quantize rounds coeffs by step, returning the quantized levels and
	// the count of non-zero levels (the RDO driver's CBF decision reads
	// this directly rather than re-scanning).
	Quantize(coeffs []int16, step int) (levels []int16, nonZero int)
	Dequantize(levels []int16, step int) []int16
}

// ReferenceQuantizer is a uniform scalar quantizer with round-half-away-
// from-zero bias, grounded on encode_quant.go's quantizeCoeffsGo/
// dequantCoeffsGo shape (per-coefficient round-then-scale, separate
// paths for quantize and dequantize) without that function's QFIX=17
// fixed-point bias tables — the numeric precision of the real quantizer
// is explicitly out of scope (§1).
type ReferenceQuantizer struct{}

func (ReferenceQuantizer) Quantize(coeffs []int16, step int) ([]int16, int) {
	if step <= 0 {
		step = 1
	}
	half := step / 2
	out := make([]int16, len(coeffs))
	nonZero := 0
	for i, c := range coeffs {
		v := int(c)
		sign := 1
		if v < 0 {
			sign = -1
			v = -v
		}
		level := (v + half) / step
		out[i] = int16(sign * level)
		if level != 0 {
			nonZero++
		}
	}
	return out, nonZero
}

func (ReferenceQuantizer) Dequantize(levels []int16, step int) []int16 {
	out := make([]int16, len(levels))
	for i, l := range levels {
		out[i] = int16(int(l) * step)
	}
	return out
}
