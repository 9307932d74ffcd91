package pic

// PictureData is the CU arena plus raster lookup contract that the RDO
// driver and decoder both consume (§6 "PictureData. CU arena + raster
// lookup"). It owns the reconstructed sample planes, the CTU roots in
// raster order, and the used-in-picture coverage marks that
// MarkUsedInPic/ClearMarkCuInPic toggle.
type PictureData struct {
	Width, Height int // luma dimensions
	CtuSize       int

	header  *SegmentHeader
	isIntra bool
	highest bool
	picQP   QP
	adaptQP bool

	ctuCols, ctuRows int
	ctus             []*CodingUnit

	planes  [MaxComponents][]uint16
	strides [MaxComponents]int
	compW   [MaxComponents]int
	compH   [MaxComponents]int

	// usedMark tracks, at 4x4-luma-sample granularity, which cells are
	// currently covered by a committed leaf — MarkUsedInPic/
	// ClearMarkCuInPic toggle it, and §4.1's "MarkUsedInPic(cu)
	// re-asserts the tile coverage of the incumbent after a losing
	// candidate un-marked it" relies on it being independently settable.
	usedMark   []bool
	markCols   int
	markRows   int

	Arena *Arena
}

// NewPictureData allocates a picture's reconstruction planes and CTU grid.
// header, isIntra, highestLayer, picQP and adaptiveQP mirror
// PictureData's own accessors (§6: GetPicQp, GetAdaptiveQp, IsIntraPic,
// IsHighestLayer).
func NewPictureData(width, height, ctuSize int, header *SegmentHeader, isIntra, highestLayer bool, picQP QP, adaptiveQP bool) *PictureData {
	p := &PictureData{
		Width: width, Height: height, CtuSize: ctuSize,
		header: header, isIntra: isIntra, highest: highestLayer,
		picQP: picQP, adaptQP: adaptiveQP,
		Arena: NewArena(),
	}

	n := header.ChromaFormat.NumComponents()
	for c := 0; c < n; c++ {
		sx, sy := p.shiftX(Component(c)), p.shiftY(Component(c))
		cw := (width + (1 << sx) - 1) >> sx
		ch := (height + (1 << sy) - 1) >> sy
		p.compW[c], p.compH[c] = cw, ch
		p.strides[c] = cw
		p.planes[c] = make([]uint16, cw*ch)
	}

	p.ctuCols = (width + ctuSize - 1) / ctuSize
	p.ctuRows = (height + ctuSize - 1) / ctuSize
	p.ctus = make([]*CodingUnit, p.ctuCols*p.ctuRows)

	p.markCols = (width + 3) / 4
	p.markRows = (height + 3) / 4
	p.usedMark = make([]bool, p.markCols*p.markRows)

	return p
}

func (p *PictureData) numComponents() int { return p.header.ChromaFormat.NumComponents() }

// shiftX/shiftY return the log2 subsampling factor of component c
// relative to the luma grid, for the picture's chroma format.
func (p *PictureData) shiftX(c Component) int {
	if c == Luma {
		return 0
	}
	switch p.header.ChromaFormat {
	case Chroma420, Chroma422:
		return 1
	default:
		return 0
	}
}

func (p *PictureData) shiftY(c Component) int {
	if c == Luma {
		return 0
	}
	if p.header.ChromaFormat == Chroma420 {
		return 1
	}
	return 0
}

// FootprintFor converts a CU's (x, y, w, h) footprint, expressed in its
// own tree's driving-component basis, into component c's actual plane
// coordinates. A SecondaryTree CU's footprint is already in chroma-plane
// units (§3 "chroma-driven"), so it passes through unchanged; a
// PrimaryTree CU's footprint is in luma units and must be subsampled for
// any non-luma component it also drives (the single-tree case, where one
// tree covers every component).
func (p *PictureData) FootprintFor(tree Tree, c Component, x, y, w, h int) (int, int, int, int) {
	if tree == SecondaryTree || c == Luma {
		return x, y, w, h
	}
	sx, sy := p.shiftX(c), p.shiftY(c)
	cw, ch := w>>sx, h>>sy
	if cw == 0 {
		cw = 1
	}
	if ch == 0 {
		ch = 1
	}
	return x >> sx, y >> sy, cw, ch
}

// GetCtu returns the CTU root at raster index idx (nil if not yet set).
func (p *PictureData) GetCtu(idx int) *CodingUnit { return p.ctus[idx] }

// SetCtu installs cu as the CTU root at raster index idx.
func (p *PictureData) SetCtu(idx int, cu *CodingUnit) { p.ctus[idx] = cu }

// CtuIndexAt returns the raster index of the CTU covering luma position
// (x, y).
func (p *PictureData) CtuIndexAt(x, y int) int {
	return (y/p.CtuSize)*p.ctuCols + (x / p.CtuSize)
}

// GetCuAt walks the committed tree down to the leaf covering (x, y) in
// tree's coordinate basis. Returns nil if no CTU has been installed at
// that position yet.
func (p *PictureData) GetCuAt(tree Tree, x, y int) *CodingUnit {
	lx, ly := p.toLuma(tree, x, y)
	ctu := p.ctus[p.CtuIndexAt(lx, ly)]
	if ctu == nil {
		return nil
	}
	return descendTo(ctu, x, y)
}

// GetCuAtForModification is identical to GetCuAt: the distinction
// between a read-only and a mutable accessor only matters in a language
// with const-correctness, but every CodingUnit pointer returned by this
// package is always mutable in Go, so it collapses to one
// implementation.
func (p *PictureData) GetCuAtForModification(tree Tree, x, y int) *CodingUnit {
	return p.GetCuAt(tree, x, y)
}

func (p *PictureData) toLuma(tree Tree, x, y int) (int, int) {
	if tree == PrimaryTree {
		return x, y
	}
	return x << p.shiftX(Cb), y << p.shiftY(Cb)
}

func descendTo(cu *CodingUnit, x, y int) *CodingUnit {
	for !cu.IsLeaf() {
		found := false
		for _, child := range cu.Children {
			if x >= child.X && x < child.X+child.Width && y >= child.Y && y < child.Y+child.Height {
				cu = child
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	return cu
}

// CreateCu allocates a new CU from the picture's arena.
func (p *PictureData) CreateCu(tree Tree, x, y, w, h int) *CodingUnit {
	return p.Arena.CreateCU(tree, x, y, w, h)
}

// ReleaseCu returns cu (and its subtree) to the picture's arena.
func (p *PictureData) ReleaseCu(cu *CodingUnit) {
	p.Arena.ReleaseCU(cu)
}

// MarkUsedInPic marks cu's footprint as covered by a committed leaf.
func (p *PictureData) MarkUsedInPic(cu *CodingUnit) {
	p.setMark(cu, true)
}

// ClearMarkCuInPic clears cu's footprint's coverage marks.
func (p *PictureData) ClearMarkCuInPic(cu *CodingUnit) {
	p.setMark(cu, false)
}

func (p *PictureData) setMark(cu *CodingUnit, v bool) {
	lx, ly := p.toLuma(cu.Tree, cu.X, cu.Y)
	x0, y0 := lx/4, ly/4
	x1 := (lx + cu.Width<<p.shiftX(boolComponent(cu.Tree)) + 3) / 4
	y1 := (ly + cu.Height<<p.shiftY(boolComponent(cu.Tree)) + 3) / 4
	if x1 > p.markCols {
		x1 = p.markCols
	}
	if y1 > p.markRows {
		y1 = p.markRows
	}
	for yy := y0; yy < y1; yy++ {
		row := yy * p.markCols
		for xx := x0; xx < x1; xx++ {
			p.usedMark[row+xx] = v
		}
	}
}

// boolComponent picks the representative component whose subsampling
// describes a tree's own coordinate basis (luma for the primary tree,
// chroma for the secondary tree).
func boolComponent(t Tree) Component {
	if t == SecondaryTree {
		return Cb
	}
	return Luma
}

// IsMarkedUsed reports whether the 4x4 luma-grid cell containing (x, y)
// is currently marked covered.
func (p *PictureData) IsMarkedUsed(lumaX, lumaY int) bool {
	x, y := lumaX/4, lumaY/4
	if x < 0 || x >= p.markCols || y < 0 || y >= p.markRows {
		return false
	}
	return p.usedMark[y*p.markCols+x]
}

// ComponentsForTree returns the component list a tree drives (§6
// "component list per tree"): the primary tree always drives luma, plus
// every component when there is no secondary tree; the secondary tree, if
// present, drives only the chroma components.
func (p *PictureData) ComponentsForTree(tree Tree) []Component {
	if !p.HasSecondaryCuTree() {
		out := make([]Component, p.numComponents())
		for i := range out {
			out[i] = Component(i)
		}
		return out
	}
	if tree == PrimaryTree {
		return []Component{Luma}
	}
	if p.numComponents() < 3 {
		return nil
	}
	return []Component{Cb, Cr}
}

// MaxDepth returns the maximum quad-split depth for tree (§6 "max depths
// per tree"), read from the segment header's MaxDepth entry for that
// tree. No extra level is added here for the secondary tree; the header
// entry carries whatever depth that tree is allowed.
func (p *PictureData) MaxDepth(tree Tree) int {
	d := p.header.MaxDepth[PrimaryTree]
	if tree == SecondaryTree {
		d = p.header.MaxDepth[SecondaryTree]
	}
	return d
}

// HasSecondaryCuTree reports whether this picture's chroma is coded with
// its own tree independent of luma (true whenever chroma is present at
// all in this codec family).
func (p *PictureData) HasSecondaryCuTree() bool {
	return p.header.ChromaFormat != ChromaMonochrome
}

// IsIntraPic reports whether every CU in this picture is coded intra.
func (p *PictureData) IsIntraPic() bool { return p.isIntra }

// IsHighestLayer reports whether this picture belongs to the highest
// temporal layer (used by §4.1's full-cost split-skip threshold).
func (p *PictureData) IsHighestLayer() bool { return p.highest }

// GetPicQp returns the picture-level QP, before any per-CTU adaptive
// delta is applied.
func (p *PictureData) GetPicQp() QP { return p.picQP }

// GetAdaptiveQp reports whether adaptive (variance-driven) per-CTU QP is
// enabled for this picture.
func (p *PictureData) GetAdaptiveQp() bool { return p.adaptQP }

// ReadSamples copies a w x h patch of component c's reconstructed samples
// starting at (x, y) (in that component's own sample grid) into dst.
func (p *PictureData) ReadSamples(c Component, x, y, w, h int, dst []uint16) {
	stride := p.strides[c]
	plane := p.planes[c]
	i := 0
	for yy := 0; yy < h; yy++ {
		row := (y+yy)*stride + x
		copy(dst[i:i+w], plane[row:row+w])
		i += w
	}
}

// WriteSamples writes a w x h patch of src into component c's
// reconstructed-sample plane starting at (x, y).
func (p *PictureData) WriteSamples(c Component, x, y, w, h int, src []uint16) {
	stride := p.strides[c]
	plane := p.planes[c]
	i := 0
	for yy := 0; yy < h; yy++ {
		row := (y+yy)*stride + x
		copy(plane[row:row+w], src[i:i+w])
		i += w
	}
}

// ComponentStride returns component c's plane stride, for collaborators
// that need to address samples directly.
func (p *PictureData) ComponentStride(c Component) int { return p.strides[c] }

// ComponentPlane exposes component c's backing sample plane directly.
func (p *PictureData) ComponentPlane(c Component) []uint16 { return p.planes[c] }

// ComponentSize returns component c's plane dimensions.
func (p *PictureData) ComponentSize(c Component) (w, h int) { return p.compW[c], p.compH[c] }

// Header returns this picture's segment header.
func (p *PictureData) Header() *SegmentHeader { return p.header }
