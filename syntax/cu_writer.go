package syntax

import "github.com/xvc-go/xvccore/pic"

// Synthetic per-element costs charged by DefaultCuWriter, in
// bitPrecisionShift-bit fixed point. As with the Writer costs, these are
// a flat stand-in for a context-adaptive entropy coder the module never
// implements (§1); they exist so the RDO driver's cost comparisons are
// internally consistent, grounded on encode_quant.go's levelCost idiom of
// mapping a symbol space to an integer bit cost.
const (
	splitFlagCost    = 1 << bitPrecisionShift
	quadVsBinaryCost = 1 << bitPrecisionShift
	splitAxisCost    = 1 << bitPrecisionShift
	intraModeCost    = 5 << bitPrecisionShift
	interModeCost    = 3 << bitPrecisionShift
	mvComponentCost  = 4 << bitPrecisionShift
	transformSelCost = 2 << bitPrecisionShift
	transformSkipCost = 1 << bitPrecisionShift
	coeffLevelCost   = 3 << bitPrecisionShift
)

// CuWriter writes a committed CU subtree's syntax through a Writer (§6).
// It never decides anything — every field it reads off the CU was already
// chosen by the RDO driver; CuWriter only charges the bits that decision
// costs.
type CuWriter interface {
	WriteSplit(cu *pic.CodingUnit, restriction pic.SplitRestriction, w Writer)
	WriteComponent(cu *pic.CodingUnit, component pic.Component, w Writer)
	WriteResidualDataRdoCbf(cu *pic.CodingUnit, component pic.Component, w Writer)
	WriteCtu(ctu *pic.CodingUnit, p *pic.PictureData, w Writer) (writeDeltaQp bool)
}

// DefaultCuWriter is the module's only CuWriter implementation.
type DefaultCuWriter struct{}

// WriteSplit charges the split_flag, and if the node did split, the
// quad-vs-binary choice and (when both axes are still legal under
// restriction) the axis choice. When restriction already forces the
// axis, no bit is charged for it — the decoder can derive it without a
// signal.
func (DefaultCuWriter) WriteSplit(cu *pic.CodingUnit, restriction pic.SplitRestriction, w Writer) {
	w.WriteBits(splitFlagCost)
	if cu.Split == pic.SplitNone {
		return
	}
	w.WriteBits(quadVsBinaryCost)
	if cu.Split != pic.SplitQuad && !(restriction.NoHorizontal || restriction.NoVertical) {
		w.WriteBits(splitAxisCost)
	}
}

// WriteComponent charges the per-component prediction-parameter syntax:
// the intra mode or inter mode/MV once per leaf (charged only on the
// first, Luma, call to avoid double counting a CU-level decision), the
// transform-select index on the Luma call only when one is chosen, and
// the transform-skip flag for each component that uses transform-skip.
func (DefaultCuWriter) WriteComponent(cu *pic.CodingUnit, component pic.Component, w Writer) {
	if component == pic.Luma {
		if cu.Mode == pic.Intra {
			w.WriteBits(intraModeCost)
		} else {
			w.WriteBits(interModeCost)
			if !cu.Merge {
				w.WriteBits(mvComponentCost)
				w.WriteBits(mvComponentCost)
			}
		}
	}
	if component == pic.Luma && cu.TransformSelectIdx[component] != pic.NoTransformSelect {
		w.WriteBits(transformSelCost)
	}
	if cu.TransformSkip[component] {
		w.WriteBits(transformSkipCost)
	}
}

// WriteResidualDataRdoCbf writes component's CBF and, when set, a cost
// proportional to its non-zero coefficient count.
func (DefaultCuWriter) WriteResidualDataRdoCbf(cu *pic.CodingUnit, component pic.Component, w Writer) {
	cbf := cu.CBF[component]
	w.WriteCbf(cbf, component)
	if !cbf {
		return
	}
	nz := 0
	for _, v := range cu.Coeffs[component] {
		if v != 0 {
			nz++
		}
	}
	w.WriteBits(uint32(nz) * coeffLevelCost)
}

// WriteCtu writes an entire committed CTU subtree, returning whether a
// delta-QP syntax element was written (gated on adaptive QP being enabled
// and not disabled by restrictions).
func (c DefaultCuWriter) WriteCtu(ctu *pic.CodingUnit, p *pic.PictureData, w Writer) bool {
	writeDeltaQp := p.GetAdaptiveQp() && !p.Header().Restrictions.DisableDeltaQp
	if writeDeltaQp {
		w.WriteQp(ctu.QP.Raw[pic.Luma], p.GetPicQp().Raw[pic.Luma], true)
	}
	c.writeSubtree(ctu, pic.SplitRestriction{}, p, w)
	return writeDeltaQp
}

func (c DefaultCuWriter) writeSubtree(cu *pic.CodingUnit, restriction pic.SplitRestriction, p *pic.PictureData, w Writer) {
	c.WriteSplit(cu, restriction, w)
	if cu.IsLeaf() {
		for _, component := range p.ComponentsForTree(cu.Tree) {
			c.WriteComponent(cu, component, w)
			c.WriteResidualDataRdoCbf(cu, component, w)
		}
		return
	}

	switch cu.Split {
	case pic.SplitQuad:
		for _, child := range cu.Children {
			c.writeSubtree(child, pic.SplitRestriction{}, p, w)
		}
	case pic.SplitHorizontal, pic.SplitVertical:
		c.writeSubtree(cu.Children[0], pic.SplitRestriction{}, p, w)
		second := pic.ForSecondChild(cu.Children[0].Split)
		c.writeSubtree(cu.Children[1], second, p, w)
	}
}
