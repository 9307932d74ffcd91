package search

import "github.com/xvc-go/xvccore/pic"

// IntraSearcher selects an intra prediction mode for cu and writes the
// predicted samples for every component cu's tree drives into recon over
// cu's footprint, causally (only already-reconstructed neighbor samples
// are read). It returns the prediction-only SSD against src. The RDO
// driver does not rank candidates by this value; it ranks them by the
// post-transform cost the TransformEncoder reports.
type IntraSearcher interface {
	SearchIntra(cu *pic.CodingUnit, src, recon *pic.PictureData, qp pic.QP) uint64
}

// intraModeDC is the only mode the reference searcher ever picks — an
// average of the causal top row and left column, the simplest member of
// the DC/planar/angular family real intra predictors choose among.
// Angular prediction formulas are explicitly out of scope (§1).
const intraModeDC = 0

// ReferenceIntraSearcher is the module's minimal IntraSearcher: DC-only
// prediction scored by SSD. Grounded on encode_frame.go's pickBestMode
// calling convention (search a block, return a mode plus a score) but
// deliberately not on any intra-angle formula, since the actual search
// is treated as a black box here (§1).
type ReferenceIntraSearcher struct{}

func (ReferenceIntraSearcher) SearchIntra(cu *pic.CodingUnit, src, recon *pic.PictureData, qp pic.QP) uint64 {
	cu.Mode = pic.Intra
	cu.IntraMode = intraModeDC

	bitDepth := recon.Header().BitDepth
	var total uint64
	for _, c := range recon.ComponentsForTree(cu.Tree) {
		x, y, w, h := recon.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		pred := dcPredict(recon, c, x, y, w, h, bitDepth)

		source := make([]uint16, w*h)
		src.ReadSamples(c, x, y, w, h, source)

		total += SSD(source, pred)
		recon.WriteSamples(c, x, y, w, h, pred)
	}
	return total
}

// dcPredict averages the causal top row and left column of already
// reconstructed samples; at a picture edge where neither is available it
// falls back to the bit-depth midpoint, matching DC prediction's standard
// boundary behavior.
func dcPredict(recon *pic.PictureData, c pic.Component, x, y, w, h, bitDepth int) []uint16 {
	sum, count := 0, 0
	if y > 0 {
		row := make([]uint16, w)
		recon.ReadSamples(c, x, y-1, w, 1, row)
		for _, v := range row {
			sum += int(v)
			count++
		}
	}
	if x > 0 {
		col := make([]uint16, h)
		recon.ReadSamples(c, x-1, y, 1, h, col)
		for _, v := range col {
			sum += int(v)
			count++
		}
	}

	var dc uint16
	if count > 0 {
		dc = uint16((sum + count/2) / count)
	} else {
		dc = uint16(1 << uint(bitDepth-1))
	}

	out := make([]uint16, w*h)
	for i := range out {
		out[i] = dc
	}
	return out
}
