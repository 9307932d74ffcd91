package rdo

import (
	"fmt"

	"github.com/xvc-go/xvccore/cucache"
	"github.com/xvc-go/xvccore/pic"
	"github.com/xvc-go/xvccore/search"
	"github.com/xvc-go/xvccore/syntax"
)

// kMinBinarySplitSize bounds binary splits (§4.1 eligibility rule for
// Horizontal/Vertical): a split is eligible only along a dimension
// strictly greater than this value.
const kMinBinarySplitSize = 4

// debugAsserts gates invariant checks over conditions §3/§4.1 call
// programmer error rather than a real-world input (e.g. CompressCu
// called with no eligible candidate at all). Mirrors the
// validate-then-return-error convention used elsewhere in this module,
// but for conditions that can only happen if this package's own
// recursion is wrong, not from bad input data.
const debugAsserts = true

func assert(cond bool, format string, args ...interface{}) {
	if debugAsserts && !cond {
		panic(fmt.Sprintf("xvc/rdo: "+format, args...))
	}
}

// CuEncoder is the CTU rate-distortion-optimization driver (§4.1): given
// an empty CU tree root, a source picture, and a reconstruction picture,
// it fills in the partition and per-leaf decisions minimizing
// cost = D + round(bits·λ), writing the winning reconstruction in place
// and charging the winning syntax's bits into the caller's running
// total.
//
// Grounded on encode_frame.go's pickBestMode/tryI4ModesRD: evaluate a
// candidate into a scratch buffer, compare by RDScore, and on
// improvement swap pointers and snapshot reconstruction — CompressCu
// generalizes that two-candidate (I4 vs I16) swap into the
// Full/Horizontal/Vertical/Quad enumeration described in §4.1.
type CuEncoder struct {
	Settings  EncoderSettings
	Intra     search.IntraSearcher
	Inter     search.InterSearcher
	Transform *TransformEncoder
	Cache     *cucache.Cache
	CuWriter  syntax.CuWriter

	// Ref is the single reference picture inter candidates motion-search
	// against. A real reference-picture buffer with multiple candidates
	// and long-term marking is out of scope (§1); one field here stands
	// in for the whole RPB.
	Ref *pic.PictureData
}

// NewCuEncoder returns a CuEncoder ready to drive CompressCu.
func NewCuEncoder(settings EncoderSettings, intra search.IntraSearcher, inter search.InterSearcher, transform *TransformEncoder, cache *cucache.Cache) *CuEncoder {
	return &CuEncoder{
		Settings:  settings,
		Intra:     intra,
		Inter:     inter,
		Transform: transform,
		Cache:     cache,
		CuWriter:  syntax.DefaultCuWriter{},
	}
}

type candidateSet struct {
	full, horizontal, vertical, quad bool
}

func treeBounds(p *pic.PictureData, tree pic.Tree) (int, int) {
	if tree == pic.SecondaryTree {
		return p.ComponentSize(pic.Cb)
	}
	return p.Width, p.Height
}

// eligible implements §4.1's eligibility rules for every candidate
// shape at cu's position, size, and depth.
func (e *CuEncoder) eligible(cu *pic.CodingUnit, p *pic.PictureData, restriction pic.SplitRestriction) candidateSet {
	r := p.Header().Restrictions
	maxTr := p.Header().MaxTrSize()
	boundW, boundH := treeBounds(p, cu.Tree)
	insidePicture := cu.X+cu.Width <= boundW && cu.Y+cu.Height <= boundH
	atCtuRoot := cu.Depth == 0 && cu.BinaryDepth == 0

	var c candidateSet
	c.full = insidePicture && cu.Width <= maxTr && cu.Height <= maxTr

	if atCtuRoot && r.DisableSplitAtCtu {
		return c
	}

	c.horizontal = insidePicture && cu.Width <= maxTr && cu.Height <= maxTr &&
		!r.DisableHorizontalSplit && restriction.Allows(pic.SplitHorizontal) && cu.Height > kMinBinarySplitSize
	c.vertical = insidePicture && cu.Width <= maxTr && cu.Height <= maxTr &&
		!r.DisableVerticalSplit && restriction.Allows(pic.SplitVertical) && cu.Width > kMinBinarySplitSize
	c.quad = !r.DisableQuadSplit && cu.BinaryDepth == 0 && cu.Depth < p.MaxDepth(cu.Tree)

	return c
}

// splitCostBits measures the split-syntax bits cu's WriteSplit would
// charge for candidate split, without disturbing cu's actual Split
// field. Isolated this way so the cost model always stays consistent
// with syntax.DefaultCuWriter rather than duplicating its constants.
func (e *CuEncoder) splitCostBits(cu *pic.CodingUnit, split pic.SplitType, restriction pic.SplitRestriction) uint32 {
	saved := cu.Split
	cu.Split = split
	counter := syntax.NewBitCounter()
	e.CuWriter.WriteSplit(cu, restriction, counter)
	cu.Split = saved
	return counter.GetFractionalBits()
}

// perturbQpForCtu computes cu's adaptive-QP delta from src's sample
// variance over cu's footprint (§4.1 CalcDeltaQpFromVariance) and
// returns the QP the rest of this CTU's search should run against.
func (e *CuEncoder) perturbQpForCtu(cu *pic.CodingUnit, p, src *pic.PictureData, qp pic.QP) pic.QP {
	bitDepth := p.Header().BitDepth
	delta := pic.CalcDeltaQPFromVariance(src, cu.X, cu.Y, cu.Width, cu.Height, bitDepth, e.Settings.AdaptiveQpStrength)
	if delta == 0 {
		return qp
	}

	var raw [pic.MaxComponents]int
	for c := 0; c < pic.MaxComponents; c++ {
		raw[c] = qp.Raw[c] + delta
	}
	return pic.NewQP(raw, bitDepth)
}

// CompressCu recursively decides cu's partition and every descendant
// leaf's mode, writing reconstruction into p and returning the total
// distortion and bits of the winning subtree.
func (e *CuEncoder) CompressCu(cu *pic.CodingUnit, rdoDepth int, restriction pic.SplitRestriction, p, src *pic.PictureData, qp pic.QP) (Distortion, uint32) {
	elig := e.eligible(cu, p, restriction)
	assert(elig.full || elig.horizontal || elig.vertical || elig.quad, "no eligible candidate at depth %d (%dx%d @ %d,%d)", rdoDepth, cu.Width, cu.Height, cu.X, cu.Y)

	if rdoDepth == 0 && e.Settings.AdaptiveQp && p.GetAdaptiveQp() {
		qp = e.perturbQpForCtu(cu, p, src, qp)
		cu.QP = qp
	}

	if !elig.horizontal && !elig.vertical && !elig.quad {
		cu.Split = pic.SplitNone
		d, bits := e.CompressNoSplit(cu, p, src, qp)
		bits += e.splitCostBits(cu, pic.SplitNone, restriction)
		p.MarkUsedInPic(cu)
		return d, bits
	}

	lambda := qp.Lambda

	var bestDist Distortion
	var bestBits uint32
	var bestCost uint64
	var bestSplit pic.SplitType
	var bestChildren []*pic.CodingUnit
	var bestSnapshot sampleSnapshot
	haveBest := false

	consider := func(split pic.SplitType, leafDist Distortion, leafBits uint32, children []*pic.CodingUnit, leafSource *pic.CodingUnit) {
		overhead := e.splitCostBits(cu, split, restriction)
		bits := leafBits + overhead
		cost := Cost(leafDist, bits, lambda)

		if !haveBest || cost < bestCost {
			for _, c := range bestChildren {
				p.ReleaseCu(c)
			}
			bestDist, bestBits, bestCost, bestSplit, bestChildren = leafDist, bits, cost, split, children
			if leafSource != nil {
				cu.CopyLeafFrom(leafSource)
			}
			bestSnapshot = snapshotSamples(p, cu.Tree, cu.X, cu.Y, cu.Width, cu.Height)
			haveBest = true
			return
		}

		for _, c := range children {
			p.ReleaseCu(c)
		}
		bestSnapshot.restore(p)
	}

	if elig.full {
		full := p.Arena.ScratchCU(cu.Tree, rdoDepth)
		*full = pic.CodingUnit{
			Tree: cu.Tree, X: cu.X, Y: cu.Y, Width: cu.Width, Height: cu.Height,
			Depth: cu.Depth, BinaryDepth: cu.BinaryDepth,
		}
		for c := 0; c < pic.MaxComponents; c++ {
			full.TransformSelectIdx[c] = pic.NoTransformSelect
		}
		d, bits := e.CompressNoSplit(full, p, src, qp)
		consider(pic.SplitNone, d, bits, nil, full)
	}

	if haveBest && bestSplit == pic.SplitNone && e.Settings.FullCostSplitSkip && cu.Skip {
		threshold := 3
		if p.IsHighestLayer() {
			threshold = 2
		}
		if cu.BinaryDepth >= threshold {
			cu.Split = bestSplit
			cu.Children = bestChildren
			p.MarkUsedInPic(cu)
			return bestDist, bestBits
		}
	}

	anyChildSplit := false

	if elig.horizontal {
		c0 := p.CreateCu(cu.Tree, cu.X, cu.Y, cu.Width, cu.Height/2)
		c0.Depth, c0.BinaryDepth = cu.Depth, cu.BinaryDepth+1
		c1 := p.CreateCu(cu.Tree, cu.X, cu.Y+cu.Height/2, cu.Width, cu.Height/2)
		c1.Depth, c1.BinaryDepth = cu.Depth, cu.BinaryDepth+1

		d0, b0 := e.CompressCu(c0, rdoDepth+1, pic.SplitRestriction{}, p, src, qp)
		d1, b1 := e.CompressCu(c1, rdoDepth+1, pic.ForSecondChild(c0.Split), p, src, qp)
		consider(pic.SplitHorizontal, d0+d1, b0+b1, []*pic.CodingUnit{c0, c1}, nil)
		if bestSplit == pic.SplitHorizontal && (c0.Split != pic.SplitNone || c1.Split != pic.SplitNone) {
			anyChildSplit = true
		}
	}

	if elig.vertical {
		c0 := p.CreateCu(cu.Tree, cu.X, cu.Y, cu.Width/2, cu.Height)
		c0.Depth, c0.BinaryDepth = cu.Depth, cu.BinaryDepth+1
		c1 := p.CreateCu(cu.Tree, cu.X+cu.Width/2, cu.Y, cu.Width/2, cu.Height)
		c1.Depth, c1.BinaryDepth = cu.Depth, cu.BinaryDepth+1

		d0, b0 := e.CompressCu(c0, rdoDepth+1, pic.SplitRestriction{}, p, src, qp)
		d1, b1 := e.CompressCu(c1, rdoDepth+1, pic.ForSecondChild(c0.Split), p, src, qp)
		consider(pic.SplitVertical, d0+d1, b0+b1, []*pic.CodingUnit{c0, c1}, nil)
		if bestSplit == pic.SplitVertical && (c0.Split != pic.SplitNone || c1.Split != pic.SplitNone) {
			anyChildSplit = true
		}
	}

	skipQuad := false
	if elig.quad && elig.horizontal && elig.vertical && e.Settings.FastQuadSplitBasedOnBinarySplit {
		maxBt := e.Settings.MaxBinarySplitDepth
		if maxBt < 1 {
			maxBt = 1
		}
		bestIsNoSplit := bestSplit == pic.SplitNone
		bestIsSingleBt := bestSplit == pic.SplitHorizontal || bestSplit == pic.SplitVertical
		intra := p.IsIntraPic()
		switch {
		case maxBt <= 2:
			skipQuad = bestIsNoSplit && !intra
		case maxBt == 3:
			skipQuad = bestIsNoSplit || (bestIsSingleBt && !intra)
		default:
			skipQuad = bestIsNoSplit || bestIsSingleBt
		}
		if skipQuad && anyChildSplit {
			skipQuad = false
		}
	}

	if elig.quad && !skipQuad {
		if e.Settings.FastCuCache {
			e.Cache.Invalidate(cu.Tree, cu.Depth+1)
		}
		hw, hh := cu.Width/2, cu.Height/2
		positions := [4][2]int{
			{cu.X, cu.Y}, {cu.X + hw, cu.Y},
			{cu.X, cu.Y + hh}, {cu.X + hw, cu.Y + hh},
		}
		children := make([]*pic.CodingUnit, 4)
		var totalD Distortion
		var totalB uint32
		for i, pos := range positions {
			c := p.CreateCu(cu.Tree, pos[0], pos[1], hw, hh)
			c.Depth, c.BinaryDepth = cu.Depth+1, 0
			d, b := e.CompressCu(c, rdoDepth+1, pic.SplitRestriction{}, p, src, qp)
			totalD += d
			totalB += b
			children[i] = c
		}
		consider(pic.SplitQuad, totalD, totalB, children, nil)
	}

	cu.Split = bestSplit
	cu.Children = bestChildren
	if cu.IsLeaf() {
		p.MarkUsedInPic(cu)
	}
	return bestDist, bestBits
}

// CompressNoSplit decides cu's own leaf payload (no further
// partitioning below this node): the cache-assisted fast path when
// eligible, otherwise the full intra or inter evaluation.
func (e *CuEncoder) CompressNoSplit(cu *pic.CodingUnit, p, src *pic.PictureData, qp pic.QP) (Distortion, uint32) {
	cu.QP = qp

	if e.Settings.FastCuCache && isFirstQuadChild(cu) {
		entry := e.Cache.Lookup(cu.Tree, cu.Depth, cu)
		if entry.Cacheable {
			return e.compressFast(cu, p, src, qp)
		}
	}

	var d Distortion
	var bits uint32
	if p.IsIntraPic() {
		d, bits = e.CompressIntra(cu, p, src, qp)
	} else {
		d, bits = e.CompressInterPic(cu, p, src, qp)
	}

	if e.Settings.FastCuCache {
		e.Cache.Store(cu.Tree, cu.Depth, cu)
	}
	return d, bits
}

// isFirstQuadChild approximates "top-left child of an aligned quad" by
// geometry alone, since CodingUnit carries no parent pointer: true iff
// cu sits at the (0,0) corner of the 2x-sized grid cell it would belong
// to were it one of four quad children.
func isFirstQuadChild(cu *pic.CodingUnit) bool {
	return cu.BinaryDepth == 0 && cu.X%(cu.Width*2) == 0 && cu.Y%(cu.Height*2) == 0
}

// compressFast is the cache-hit path (§4.1 "cache hit as first CU in a
// quad"). It runs the same intra or inter search as the regular path
// and skips only the cache Store call: no prediction parameters are
// copied from the cached donor CU, the search is not avoided, and the
// leaf's bits are charged as usual.
func (e *CuEncoder) compressFast(cu *pic.CodingUnit, p, src *pic.PictureData, qp pic.QP) (Distortion, uint32) {
	if p.IsIntraPic() {
		return e.CompressIntra(cu, p, src, qp)
	}
	return e.CompressInterPic(cu, p, src, qp)
}

// CompressIntra searches an intra prediction for cu and runs the
// transform-selection engine over the residual.
func (e *CuEncoder) CompressIntra(cu *pic.CodingUnit, p, src *pic.PictureData, qp pic.QP) (Distortion, uint32) {
	cu.Mode = pic.Intra
	e.Intra.SearchIntra(cu, src, p, qp)
	return e.Transform.EncodeLeaf(cu, p, src, qp, e.Settings)
}
