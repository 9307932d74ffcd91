package rdo

import "github.com/xvc-go/xvccore/syntax"

// Distortion is an unsigned 64-bit sum of squared sample errors (§4.1
// "Distortion is accumulated as an unsigned 64-bit sum of squared sample
// errors"). Cost sharing the same precision lets rate and distortion be
// combined without an intermediate rescale.
type Distortion uint64

// DistortionMax is the largest Distortion value; any comparison against
// it always loses. TransformEncoder does not return it: a configuration
// the signaling rules make impossible to express (§4.2) is left out of
// the candidate set instead.
const DistortionMax Distortion = ^Distortion(0)

// Cost combines a Distortion and a fractional-bit rate under lambda into
// the single score the RDO driver compares candidates by: cost = D +
// round(bits·λ) (§4.1), the 0.5 rounding constant added before the
// bits·λ product is truncated to an integer.
func Cost(d Distortion, fractionalBits uint32, lambda float64) uint64 {
	bits := float64(fractionalBits) / float64(uint64(1)<<syntax.BitPrecisionShift)
	return uint64(d) + uint64(bits*lambda+0.5)
}
