package search

import "github.com/xvc-go/xvccore/pic"

// InterSearcher evaluates inter-prediction candidates for cu against a
// reference picture, writing the winning prediction into recon and
// mutating cu's MV/Merge/InterMode fields. Every method returns the
// prediction-only SSD against src, exactly like IntraSearcher. Motion
// estimation search patterns are explicitly out of scope (§1); this
// exists only to drive the RDO driver's inter-leaf mode menu (§4.1) with
// something that produces real numbers.
type InterSearcher interface {
	// CanAffineMerge reports whether cu is eligible for the affine-merge
	// candidate (the first entry in the inter-leaf mode menu).
	CanAffineMerge(cu *pic.CodingUnit) bool

	// NumMergeCandidates returns how many merge candidates SearchMerge
	// can be asked about for cu, capped by kNumInterMergeCandidates (5).
	NumMergeCandidates(cu *pic.CodingUnit) int

	// SearchMerge evaluates merge candidate idx (affine merge when
	// affine is true, regular merge otherwise), writing the prediction
	// into recon.
	SearchMerge(cu *pic.CodingUnit, idx int, affine bool, src, recon, ref *pic.PictureData, qp pic.QP) uint64

	// SearchME runs ordinary (non-merge) motion search.
	SearchME(cu *pic.CodingUnit, src, recon, ref *pic.PictureData, qp pic.QP) uint64

	// SearchLIC runs motion search with local-illumination compensation,
	// using an integer-pel-only MV when fullPel is set.
	SearchLIC(cu *pic.CodingUnit, fullPel bool, src, recon, ref *pic.PictureData, qp pic.QP) uint64
}

// mvCandidates are the fixed offsets the reference searcher tries, in
// luma sample units. Not a real motion search — just enough spread to
// give SSD-based ranking something to choose between.
var mvCandidates = []pic.MotionVector{
	{X: 0, Y: 0},
	{X: 4, Y: 0},
	{X: -4, Y: 0},
	{X: 0, Y: 4},
	{X: 0, Y: -4},
}

// ReferenceInterSearcher is the module's minimal InterSearcher.
type ReferenceInterSearcher struct{}

func (ReferenceInterSearcher) CanAffineMerge(cu *pic.CodingUnit) bool {
	return cu.Width >= 16 && cu.Height >= 16
}

func (ReferenceInterSearcher) NumMergeCandidates(cu *pic.CodingUnit) int {
	return len(mvCandidates)
}

func (ReferenceInterSearcher) SearchMerge(cu *pic.CodingUnit, idx int, affine bool, src, recon, ref *pic.PictureData, qp pic.QP) uint64 {
	mv := mvCandidates[idx%len(mvCandidates)]
	cu.Mode = pic.Inter
	cu.Merge = true
	cu.MV = mv
	if affine {
		cu.InterMode = pic.InterAffineMerge
	} else {
		cu.InterMode = pic.InterMerge
	}
	return motionCompensate(cu, mv, src, recon, ref)
}

func (ReferenceInterSearcher) SearchME(cu *pic.CodingUnit, src, recon, ref *pic.PictureData, qp pic.QP) uint64 {
	best := mvCandidates[0]
	var bestCost uint64 = ^uint64(0)
	for _, mv := range mvCandidates {
		d := costAt(cu, mv, src, ref)
		if d < bestCost {
			bestCost = d
			best = mv
		}
	}
	cu.Mode = pic.Inter
	cu.Merge = false
	cu.MV = best
	cu.InterMode = pic.InterME
	return motionCompensate(cu, best, src, recon, ref)
}

func (ReferenceInterSearcher) SearchLIC(cu *pic.CodingUnit, fullPel bool, src, recon, ref *pic.PictureData, qp pic.QP) uint64 {
	mv := mvCandidates[0]
	if !fullPel {
		mv = mvCandidates[1]
	}
	cu.Mode = pic.Inter
	cu.Merge = false
	cu.MV = mv
	if fullPel {
		cu.InterMode = pic.InterFullPel
	} else {
		cu.InterMode = pic.InterLIC
	}

	var total uint64
	for _, c := range recon.ComponentsForTree(cu.Tree) {
		x, y, w, h := recon.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		refSamples := readShifted(ref, c, x, y, w, h, mv)
		source := make([]uint16, w*h)
		src.ReadSamples(c, x, y, w, h, source)

		offset := illuminationOffset(source, refSamples)
		pred := applyOffset(refSamples, offset, recon.Header().BitDepth)

		total += SSD(source, pred)
		recon.WriteSamples(c, x, y, w, h, pred)
	}
	return total
}

func costAt(cu *pic.CodingUnit, mv pic.MotionVector, src, ref *pic.PictureData) uint64 {
	var total uint64
	for _, c := range ref.ComponentsForTree(cu.Tree) {
		x, y, w, h := ref.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		refSamples := readShifted(ref, c, x, y, w, h, mv)
		source := make([]uint16, w*h)
		src.ReadSamples(c, x, y, w, h, source)
		total += SSD(source, refSamples)
	}
	return total
}

func motionCompensate(cu *pic.CodingUnit, mv pic.MotionVector, src, recon, ref *pic.PictureData) uint64 {
	var total uint64
	for _, c := range recon.ComponentsForTree(cu.Tree) {
		x, y, w, h := recon.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		refSamples := readShifted(ref, c, x, y, w, h, mv)
		source := make([]uint16, w*h)
		src.ReadSamples(c, x, y, w, h, source)

		total += SSD(source, refSamples)
		recon.WriteSamples(c, x, y, w, h, refSamples)
	}
	return total
}

// readShifted reads a w x h patch of component c from ref at (x+mv.X,
// y+mv.Y), clamping the read position to stay inside the component's
// plane — a stand-in for sub-pel interpolation at picture edges, which is
// explicitly out of scope.
func readShifted(ref *pic.PictureData, c pic.Component, x, y, w, h int, mv pic.MotionVector) []uint16 {
	cw, ch := ref.ComponentSize(c)
	sx := clamp(x+int(mv.X), 0, cw-w)
	sy := clamp(y+int(mv.Y), 0, ch-h)
	out := make([]uint16, w*h)
	ref.ReadSamples(c, sx, sy, w, h, out)
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// illuminationOffset returns the average sample-value difference between
// source and a reference prediction, the single scalar a local-
// illumination-compensation model adds back to the reference block.
func illuminationOffset(source, ref []uint16) int {
	if len(source) == 0 {
		return 0
	}
	sum := 0
	for i := range source {
		sum += int(source[i]) - int(ref[i])
	}
	return sum / len(source)
}

func applyOffset(samples []uint16, offset, bitDepth int) []uint16 {
	max := (1 << uint(bitDepth)) - 1
	out := make([]uint16, len(samples))
	for i, v := range samples {
		adjusted := int(v) + offset
		out[i] = uint16(clamp(adjusted, 0, max))
	}
	return out
}
