package rdo

import (
	"github.com/xvc-go/xvccore/pic"
	"github.com/xvc-go/xvccore/search"
	"github.com/xvc-go/xvccore/syntax"
)

// kMaxTransformSelectIdx bounds transform_select_idx's candidate range
// [0, kMaxTransformSelectIdx) for luma (§4.2).
const kMaxTransformSelectIdx = 4

// TransformEncoder is the transform-selection engine (§4.2): given a CU
// leaf with prediction already written into recon, it chooses per-
// component CBF, transform coefficients, and final reconstruction that
// minimize D + round(bits·λ), enforcing the signaling invariants that
// make some configurations impossible to express.
//
// Grounded on encode_quant.go's RDScore/quantizeSingle and
// encode_frame.go's encodeI4Residuals/encodeUVResiduals (the per-
// component compute-residual / transform / quantize / reconstruct
// pipeline), with the trial-and-compare shape of tryI4ModesRD
// generalized from "I4 vs I16" to the richer transform-select/
// transform-skip/CBF-zero candidate set described in §4.2.
type TransformEncoder struct {
	Transform search.Transform
	Quantizer search.Quantizer
	CuWriter  syntax.CuWriter
}

// NewTransformEncoder returns a TransformEncoder over the given
// transform and quantizer implementations.
func NewTransformEncoder(t search.Transform, q search.Quantizer) *TransformEncoder {
	return &TransformEncoder{Transform: t, Quantizer: q, CuWriter: syntax.DefaultCuWriter{}}
}

// EncodeLeaf evaluates every component cu's tree drives and, for inter
// CUs, the root-CBF-zero candidate over the whole component set (§4.2).
// recon must already hold this leaf's prediction (written by
// IntraSearcher/InterSearcher) for every such component.
func (te *TransformEncoder) EncodeLeaf(cu *pic.CodingUnit, recon, src *pic.PictureData, qp pic.QP, settings EncoderSettings) (Distortion, uint32) {
	restrictions := recon.Header().Restrictions
	components := recon.ComponentsForTree(cu.Tree)

	var predictions [pic.MaxComponents][]uint16
	var totalD Distortion
	var totalBits uint32

	for _, comp := range components {
		x, y, w, h := recon.FootprintFor(cu.Tree, comp, cu.X, cu.Y, cu.Width, cu.Height)
		pred := make([]uint16, w*h)
		recon.ReadSamples(comp, x, y, w, h, pred)
		predictions[comp] = pred

		d, bits := te.evalComponent(cu, comp, x, y, w, h, pred, recon, src, qp, restrictions, settings)
		totalD += d
		totalBits += bits
	}

	if cu.Mode == pic.Inter && !restrictions.DisableRootCbfZero {
		totalD, totalBits = te.evalRootCbfZero(cu, components, predictions, recon, src, qp, totalD, totalBits)
	}

	return totalD, totalBits
}

type transformCandidate struct {
	idx      int8
	skip     bool
	cbf      bool
	levels   []int16
	reconBuf []uint16
	dist     Distortion
	bits     uint32
	cost     uint64
}

// evalComponent implements the per-component candidate set: normal
// transform at every legal transform_select_idx, transform-skip, and
// CBF-zero, picking the cheapest under the signaling-invariant and
// tie-break rules (§4.2), and writes the winner's decision into cu and
// its reconstruction into recon. The normal-transform candidates are
// tried only when the block is square (w == h), since search.Transform
// works on square blocks; a non-square block chooses between
// transform-skip and CBF-zero.
func (te *TransformEncoder) evalComponent(cu *pic.CodingUnit, comp pic.Component, x, y, w, h int, pred []uint16, recon, src *pic.PictureData, qp pic.QP, restrictions pic.Restrictions, settings EncoderSettings) (Distortion, uint32) {
	source := make([]uint16, w*h)
	src.ReadSamples(comp, x, y, w, h, source)

	residual := make([]int16, w*h)
	for i := range residual {
		residual[i] = int16(int(source[i]) - int(pred[i]))
	}

	bitDepth := recon.Header().BitDepth
	step := qp.InverseScale[comp]
	lambda := qp.Lambda

	var best transformCandidate
	bestCost := uint64(0)
	haveBest := false

	tieBreaksToSkip := func(c transformCandidate) bool {
		return settings.BiasTransformSelectCost && haveBest && c.cost == bestCost &&
			((comp == pic.Luma && best.idx > 0) || c.skip)
	}
	consider := func(c transformCandidate) {
		if !haveBest || c.cost < bestCost || tieBreaksToSkip(c) {
			best, bestCost, haveBest = c, c.cost, true
		}
	}

	if w == h {
		for _, idx := range te.selectIndices(comp, restrictions) {
			coeffs := te.Transform.Forward(residual, w)
			levels, nz := te.Quantizer.Quantize(coeffs, step)
			if !normalSignalingAllowed(cu, comp, idx, nz) {
				continue
			}

			deq := te.Quantizer.Dequantize(levels, step)
			spatial := te.Transform.Inverse(deq, w)
			reconBuf := addClamp(pred, spatial, bitDepth)

			trueDist := Distortion(search.SSD(source, reconBuf))
			rankDist := trueDist
			if settings.FastInterTransformDist && cu.Mode == pic.Inter && nz > 0 {
				rankDist = Distortion(residualDomainSSD(residual, spatial))
			}
			bits := te.measureBits(cu, comp, idx, false, nz > 0, levels)
			cost := Cost(rankDist, bits, lambda)
			consider(transformCandidate{idx: idx, cbf: nz > 0, levels: levels, reconBuf: reconBuf, dist: trueDist, bits: bits, cost: cost})
		}
	}

	if te.canTransformSkip(cu, comp) && !restrictions.DisableTransformSkip {
		levels, nz := te.Quantizer.Quantize(residual, step)
		if nz > 0 {
			deq := te.Quantizer.Dequantize(levels, step)
			reconBuf := addClamp(pred, deq, bitDepth)

			trueDist := Distortion(search.SSD(source, reconBuf))
			rankDist := trueDist
			if settings.FastInterTransformDist && cu.Mode == pic.Inter {
				rankDist = Distortion(residualDomainSSD(residual, deq))
			}
			bits := te.measureBits(cu, comp, pic.NoTransformSelect, true, true, levels)
			cost := Cost(rankDist, bits, lambda)
			consider(transformCandidate{idx: pic.NoTransformSelect, skip: true, cbf: true, levels: levels, reconBuf: reconBuf, dist: trueDist, bits: bits, cost: cost})
		}
	}

	zeroDist := Distortion(search.SSD(source, pred))
	zeroBits := te.measureBits(cu, comp, pic.NoTransformSelect, false, false, nil)
	zeroCost := Cost(zeroDist, zeroBits, lambda)
	zero := transformCandidate{idx: pic.NoTransformSelect, cbf: false, reconBuf: pred, dist: zeroDist, bits: zeroBits, cost: zeroCost}
	consider(zero)

	cu.TransformSelectIdx[comp] = best.idx
	cu.TransformSkip[comp] = best.skip
	cu.CBF[comp] = best.cbf
	cu.Coeffs[comp] = append(cu.Coeffs[comp][:0], best.levels...)
	recon.WriteSamples(comp, x, y, w, h, best.reconBuf)

	return best.dist, best.bits
}

// evalRootCbfZero compares the already-decided per-component outcome
// against forcing every component's CBF to zero at once (§4.2,
// "analogous" to the component-level CBF-zero candidate but over the
// full set, used once per inter CU).
func (te *TransformEncoder) evalRootCbfZero(cu *pic.CodingUnit, components []pic.Component, predictions [pic.MaxComponents][]uint16, recon, src *pic.PictureData, qp pic.QP, nonZeroD Distortion, nonZeroBits uint32) (Distortion, uint32) {
	nonZeroCounter := syntax.NewBitCounter()
	nonZeroCounter.WriteRootCbf(true)
	nonZeroTotalBits := nonZeroBits + nonZeroCounter.GetFractionalBits()

	zeroCounter := syntax.NewBitCounter()
	zeroCounter.WriteRootCbf(false)
	zeroBits := zeroCounter.GetFractionalBits()

	var zeroDist Distortion
	for _, comp := range components {
		x, y, w, h := recon.FootprintFor(cu.Tree, comp, cu.X, cu.Y, cu.Width, cu.Height)
		source := make([]uint16, w*h)
		src.ReadSamples(comp, x, y, w, h, source)
		zeroDist += Distortion(search.SSD(source, predictions[comp]))
	}

	lambda := qp.Lambda
	nonZeroCost := Cost(nonZeroD, nonZeroTotalBits, lambda)
	zeroCost := Cost(zeroDist, zeroBits, lambda)

	if zeroCost > nonZeroCost {
		return nonZeroD, nonZeroTotalBits
	}

	for _, comp := range components {
		cu.CBF[comp] = false
		cu.TransformSelectIdx[comp] = pic.NoTransformSelect
		cu.TransformSkip[comp] = false
		cu.Coeffs[comp] = cu.Coeffs[comp][:0]
		x, y, w, h := recon.FootprintFor(cu.Tree, comp, cu.X, cu.Y, cu.Width, cu.Height)
		recon.WriteSamples(comp, x, y, w, h, predictions[comp])
	}
	return zeroDist, zeroBits
}

// measureBits charges the bits a candidate decision would cost by
// temporarily writing it into cu and asking syntax.DefaultCuWriter,
// rather than duplicating its cost table here.
func (te *TransformEncoder) measureBits(cu *pic.CodingUnit, comp pic.Component, idx int8, skip, cbf bool, levels []int16) uint32 {
	savedIdx, savedSkip, savedCBF, savedCoeffs := cu.TransformSelectIdx[comp], cu.TransformSkip[comp], cu.CBF[comp], cu.Coeffs[comp]

	cu.TransformSelectIdx[comp], cu.TransformSkip[comp], cu.CBF[comp], cu.Coeffs[comp] = idx, skip, cbf, levels

	counter := syntax.NewBitCounter()
	te.CuWriter.WriteComponent(cu, comp, counter)
	te.CuWriter.WriteResidualDataRdoCbf(cu, comp, counter)
	bits := counter.GetFractionalBits()

	cu.TransformSelectIdx[comp], cu.TransformSkip[comp], cu.CBF[comp], cu.Coeffs[comp] = savedIdx, savedSkip, savedCBF, savedCoeffs
	return bits
}

func (te *TransformEncoder) selectIndices(comp pic.Component, r pic.Restrictions) []int8 {
	if comp != pic.Luma || r.DisableTransformSelect {
		return []int8{pic.NoTransformSelect}
	}
	out := make([]int8, 0, kMaxTransformSelectIdx+1)
	out = append(out, pic.NoTransformSelect)
	for i := int8(0); i < kMaxTransformSelectIdx; i++ {
		out = append(out, i)
	}
	return out
}

// canTransformSkip is a size-gated eligibility stand-in: real
// transform-skip eligibility depends on profile/tool constraints out of
// scope here (§1); this module only restricts it to the block sizes
// transform-skip is conventionally offered at.
func (te *TransformEncoder) canTransformSkip(cu *pic.CodingUnit, comp pic.Component) bool {
	return cu.Width <= 32 && cu.Height <= 32
}

// normalSignalingAllowed enforces §4.2's impossible-configuration
// rules for the normal-transform candidate: intra luma with a positive
// transform_select_idx needs at least 3 non-zero coefficients to be
// worth signaling, and inter luma with transform-select active needs at
// least one.
func normalSignalingAllowed(cu *pic.CodingUnit, comp pic.Component, idx int8, nz int) bool {
	if cu.Mode == pic.Intra && comp == pic.Luma && idx > 0 && nz < 3 {
		return false
	}
	if cu.Mode == pic.Inter && comp == pic.Luma && idx != pic.NoTransformSelect && nz == 0 {
		return false
	}
	return true
}

func addClamp(pred []uint16, residual []int16, bitDepth int) []uint16 {
	max := (1 << uint(bitDepth)) - 1
	out := make([]uint16, len(pred))
	for i := range out {
		v := int(pred[i]) + int(residual[i])
		if v < 0 {
			v = 0
		}
		if v > max {
			v = max
		}
		out[i] = uint16(v)
	}
	return out
}

// residualDomainSSD is the fast_inter_transform_dist substitute metric
// (§4.2): the squared error between the original residual and its
// transform/quantize/inverse-transform round trip, cheaper than a full
// reconstructed-sample SSD and used only to rank candidates, never as
// the distortion value a candidate's cost is ultimately reported with.
func residualDomainSSD(original, reconstructed []int16) uint64 {
	var sum uint64
	for i := range original {
		diff := int64(original[i]) - int64(reconstructed[i])
		sum += uint64(diff * diff)
	}
	return sum
}
