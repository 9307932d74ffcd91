package rdo

import (
	"github.com/xvc-go/xvccore/cucache"
	"github.com/xvc-go/xvccore/pic"
	"github.com/xvc-go/xvccore/search"
	"github.com/xvc-go/xvccore/syntax"
)

// CompressInterPic runs the seven-entry inter-leaf mode menu (§4.1):
// affine merge, regular merge (two-pass, fast_merge_skip shortcut),
// regular motion estimation, LIC, full-pel, LIC+full-pel, and
// conditionally intra. Every entry is scored by its full post-transform
// RD cost, not prediction-only SSD, so the comparison between inter
// candidates and the trailing intra candidate is apples to apples.
func (e *CuEncoder) CompressInterPic(cu *pic.CodingUnit, p, src *pic.PictureData, qp pic.QP) (Distortion, uint32) {
	r := p.Header().Restrictions
	cache := e.Cache.Lookup(cu.Tree, cu.Depth, cu)

	temp := p.CreateCu(cu.Tree, cu.X, cu.Y, cu.Width, cu.Height)
	temp.Depth, temp.BinaryDepth = cu.Depth, cu.BinaryDepth
	defer p.ReleaseCu(temp)

	var bestDist Distortion
	var bestBits uint32
	var bestCost uint64
	var bestSnapshot sampleSnapshot
	haveBest := false

	commit := func(cost uint64, d Distortion, bits uint32) bool {
		if haveBest && cost >= bestCost {
			return false
		}
		cu.CopyLeafFrom(temp)
		bestDist, bestBits, bestCost = d, bits, cost
		bestSnapshot = snapshotSamples(p, cu.Tree, cu.X, cu.Y, cu.Width, cu.Height)
		haveBest = true
		return true
	}
	restore := func() {
		if haveBest {
			bestSnapshot.restore(p)
		}
	}

	score := func() (Distortion, uint32, uint64) {
		d, bits := e.Transform.EncodeLeaf(temp, p, src, qp, e.Settings)
		return d, bits, Cost(d, bits, qp.Lambda)
	}

	try := func() {
		d, bits, cost := score()
		if !commit(cost, d, bits) {
			restore()
		}
	}

	ref := e.Ref

	if e.Inter.CanAffineMerge(cu) && !r.DisableAffine && !r.DisableMerge {
		n := e.Inter.NumMergeCandidates(cu)
		if n > e.Settings.NumInterMergeCandidates {
			n = e.Settings.NumInterMergeCandidates
		}
		for idx := 0; idx < n; idx++ {
			e.Inter.SearchMerge(temp, idx, true, src, p, ref, qp)
			try()
		}
	}

	if !r.DisableMerge {
		e.evalMergeCandidates(cu, temp, p, src, ref, qp, cache, commit, restore)
	}

	skipME := e.Settings.FastSkipInter && cache.Cacheable && !cache.AnyInter
	if !skipME {
		e.Inter.SearchME(temp, src, p, ref, qp)
		try()
	}

	if !r.DisableInterLocalIlluComp {
		e.Inter.SearchLIC(temp, false, src, p, ref, qp)
		try()
	}

	if !r.DisableInterFullpelMv {
		e.Inter.SearchLIC(temp, true, src, p, ref, qp)
		try()
	}

	if !r.DisableInterLocalIlluComp && !r.DisableInterFullpelMv {
		// Menu entry 6 (LIC+full-pel): the reference InterSearcher has no
		// distinct "full-pel without LIC" path (SearchLIC always applies
		// illumination compensation), so this entry and the one above
		// evaluate the same candidate. A real inter predictor would
		// expose both independently.
		e.Inter.SearchLIC(temp, true, src, p, ref, qp)
		try()
	}

	evaluateIntra := !e.Settings.FastSkipIntra || (haveBest && cu.AllCBFZero()) || e.Settings.AlwaysEvaluateIntraInInter
	if evaluateIntra {
		temp.Mode = pic.Intra
		temp.Merge = false
		temp.InterMode = pic.InterAsIntra
		e.Intra.SearchIntra(temp, src, p, qp)
		try()
	}

	if e.Settings.FastCuCache {
		e.Cache.Store(cu.Tree, cu.Depth, cu)
	}
	return bestDist, bestBits
}

// evalMergeCandidates implements the two-pass regular-merge evaluation
// (§4.1): pass 0 lets the transform engine choose CBF normally, pass 1
// forces every component's CBF to zero (the "skip" variant). A
// candidate whose pass-0 outcome was already all-CBF-zero is not
// re-tried in pass 1 — forcing zero residual on an already-zero
// residual can't change anything. fast_merge_skip, when the cache shows
// this block has resolved to skip before and never to intra, starts
// straight at pass 1.
func (e *CuEncoder) evalMergeCandidates(cu, temp *pic.CodingUnit, p, src, ref *pic.PictureData, qp pic.QP, cache cucache.Entry, commit func(uint64, Distortion, uint32) bool, restore func()) {
	n := e.Inter.NumMergeCandidates(cu)
	if n > e.Settings.NumInterMergeCandidates {
		n = e.Settings.NumInterMergeCandidates
	}

	startPass := 0
	if e.Settings.FastMergeSkip && cache.Cacheable && cache.AnySkip && !cache.AnyIntra {
		startPass = 1
	}

	alreadyZero := make([]bool, n)
	for pass := startPass; pass <= 1; pass++ {
		for idx := 0; idx < n; idx++ {
			if pass == 1 && alreadyZero[idx] {
				continue
			}

			e.Inter.SearchMerge(temp, idx, false, src, p, ref, qp)
			temp.Merge = true

			var d Distortion
			var bits uint32
			if pass == 0 {
				d, bits = e.Transform.EncodeLeaf(temp, p, src, qp, e.Settings)
				temp.Skip = temp.AllCBFZero()
			} else {
				temp.Skip = true
				d, bits = forceZeroResidual(e.Transform, temp, p, src)
			}

			if temp.AllCBFZero() {
				alreadyZero[idx] = true
			}

			cost := Cost(d, bits, qp.Lambda)
			if commit(cost, d, bits) {
				if temp.AllCBFZero() {
					return
				}
			} else {
				restore()
			}
		}
	}
}

// forceZeroResidual writes the prediction-only reconstruction for cu
// (already populated in recon by the mode search) and reports its
// distortion and signaling cost with every component's CBF cleared —
// the "regular merge, force skip" candidate.
func forceZeroResidual(te *TransformEncoder, cu *pic.CodingUnit, recon, src *pic.PictureData) (Distortion, uint32) {
	var d Distortion
	counter := syntax.NewBitCounter()
	for _, comp := range recon.ComponentsForTree(cu.Tree) {
		x, y, w, h := recon.FootprintFor(cu.Tree, comp, cu.X, cu.Y, cu.Width, cu.Height)
		pred := make([]uint16, w*h)
		recon.ReadSamples(comp, x, y, w, h, pred)
		source := make([]uint16, w*h)
		src.ReadSamples(comp, x, y, w, h, source)
		d += Distortion(search.SSD(source, pred))

		cu.CBF[comp] = false
		cu.TransformSelectIdx[comp] = pic.NoTransformSelect
		cu.TransformSkip[comp] = false
		cu.Coeffs[comp] = cu.Coeffs[comp][:0]
		te.CuWriter.WriteResidualDataRdoCbf(cu, comp, counter)
	}
	return d, counter.GetFractionalBits()
}
