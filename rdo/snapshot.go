package rdo

import "github.com/xvc-go/xvccore/pic"

// sampleSnapshot is a raw, leaf-agnostic copy of the reconstructed
// samples over one footprint. pic.ReconstructionState restores a CU's
// leaf payload together with its samples (§3), which is exactly right
// for a single leaf's own mode-menu trials but wrong one level up: when
// CompressCu backtracks out of a losing Horizontal/Vertical/Quad
// candidate, the node under trial isn't a leaf at all, and
// ReconstructionState.LoadStateFrom would force it back to one
// (CopyLeafFrom always sets Split = SplitNone). sampleSnapshot only
// ever touches pixels, so the structural (split) level of the recursion
// can restore samples without corrupting whichever shape currently
// holds the incumbent decision.
type sampleSnapshot struct {
	tree       pic.Tree
	x, y, w, h int
	data       [pic.MaxComponents][]uint16
}

func snapshotSamples(p *pic.PictureData, tree pic.Tree, x, y, w, h int) sampleSnapshot {
	s := sampleSnapshot{tree: tree, x: x, y: y, w: w, h: h}
	for _, c := range p.ComponentsForTree(tree) {
		cx, cy, cw, ch := p.FootprintFor(tree, c, x, y, w, h)
		buf := make([]uint16, cw*ch)
		p.ReadSamples(c, cx, cy, cw, ch, buf)
		s.data[c] = buf
	}
	return s
}

func (s sampleSnapshot) restore(p *pic.PictureData) {
	for _, c := range p.ComponentsForTree(s.tree) {
		if s.data[c] == nil {
			continue
		}
		cx, cy, cw, ch := p.FootprintFor(s.tree, c, s.x, s.y, s.w, s.h)
		p.WriteSamples(c, cx, cy, cw, ch, s.data[c])
	}
}
