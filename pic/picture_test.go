package pic

import "testing"

func newTestHeader() *SegmentHeader {
	return &SegmentHeader{
		ChromaFormat: Chroma420,
		BitDepth:     8,
		MaxDepth:     [2]int{3, 4},
	}
}

func TestNewPictureDataPlaneSizes(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(64, 32, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)

	if w, ht := p.ComponentSize(Luma); w != 64 || ht != 32 {
		t.Fatalf("luma size = %dx%d, want 64x32", w, ht)
	}
	if w, ht := p.ComponentSize(Cb); w != 32 || ht != 16 {
		t.Fatalf("Cb size = %dx%d, want 32x16 for 4:2:0", w, ht)
	}
}

func TestNewPictureDataMonochromeHasNoChromaPlanes(t *testing.T) {
	h := &SegmentHeader{ChromaFormat: ChromaMonochrome, BitDepth: 8}
	p := NewPictureData(16, 16, 16, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)
	if p.HasSecondaryCuTree() {
		t.Fatal("monochrome picture must report no secondary CU tree")
	}
	if got := p.ComponentsForTree(PrimaryTree); len(got) != 1 || got[0] != Luma {
		t.Fatalf("monochrome ComponentsForTree(primary) = %v, want [Luma]", got)
	}
}

func TestReadWriteSamplesRoundTrip(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(32, 32, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)

	src := []uint16{1, 2, 3, 4, 5, 6}
	p.WriteSamples(Luma, 4, 4, 3, 2, src)

	dst := make([]uint16, 6)
	p.ReadSamples(Luma, 4, 4, 3, 2, dst)

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("round trip mismatch at %d: got %d want %d", i, dst[i], src[i])
		}
	}

	outside := make([]uint16, 3)
	p.ReadSamples(Luma, 4, 7, 3, 1, outside)
	for _, v := range outside {
		if v != 0 {
			t.Fatal("samples outside the written patch must remain zero")
		}
	}
}

func TestCtuRasterAndCuLookup(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(64, 64, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)

	ctu := p.CreateCu(PrimaryTree, 32, 0, 32, 32)
	ctu.Split = SplitQuad
	for i := 0; i < 4; i++ {
		x := 32 + (i%2)*16
		y := (i / 2) * 16
		ctu.Children = append(ctu.Children, p.CreateCu(PrimaryTree, x, y, 16, 16))
	}
	idx := p.CtuIndexAt(32, 0)
	p.SetCtu(idx, ctu)

	if got := p.GetCtu(idx); got != ctu {
		t.Fatal("GetCtu did not return the CTU installed by SetCtu")
	}

	leaf := p.GetCuAt(PrimaryTree, 40, 0)
	if leaf == nil || leaf.Width != 16 {
		t.Fatalf("GetCuAt did not descend to the 16x16 leaf, got %+v", leaf)
	}

	if got := p.GetCuAt(PrimaryTree, 0, 0); got != nil {
		t.Fatal("GetCuAt over an unset CTU slot must return nil")
	}
}

func TestMarkUsedInPicAndClear(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(32, 32, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)

	cu := &CodingUnit{Tree: PrimaryTree, X: 0, Y: 0, Width: 8, Height: 8}
	p.MarkUsedInPic(cu)
	if !p.IsMarkedUsed(0, 0) || !p.IsMarkedUsed(7, 7) {
		t.Fatal("expected cu's footprint to be marked used")
	}
	if p.IsMarkedUsed(8, 8) {
		t.Fatal("marking must not bleed past the cu's footprint")
	}

	p.ClearMarkCuInPic(cu)
	if p.IsMarkedUsed(0, 0) {
		t.Fatal("ClearMarkCuInPic must undo MarkUsedInPic")
	}
}

func TestMaxDepthPerTree(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(32, 32, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)
	if p.MaxDepth(PrimaryTree) != 3 {
		t.Fatalf("primary MaxDepth = %d, want 3", p.MaxDepth(PrimaryTree))
	}
	if p.MaxDepth(SecondaryTree) != 4 {
		t.Fatalf("secondary MaxDepth = %d, want 4", p.MaxDepth(SecondaryTree))
	}
}

func TestPictureAccessors(t *testing.T) {
	h := newTestHeader()
	qp := NewQP([MaxComponents]int{30, 30, 30}, 8)
	p := NewPictureData(16, 16, 16, h, true, true, qp, true)

	if !p.IsIntraPic() {
		t.Fatal("IsIntraPic should be true")
	}
	if !p.IsHighestLayer() {
		t.Fatal("IsHighestLayer should be true")
	}
	if !p.GetAdaptiveQp() {
		t.Fatal("GetAdaptiveQp should be true")
	}
	if p.GetPicQp().Raw[Luma] != 30 {
		t.Fatalf("GetPicQp().Raw[Luma] = %d, want 30", p.GetPicQp().Raw[Luma])
	}
}

func TestReconstructionStateSaveAndLoad(t *testing.T) {
	h := newTestHeader()
	p := NewPictureData(32, 32, 32, h, true, false, NewQP([MaxComponents]int{32, 32, 32}, 8), false)

	cu := &CodingUnit{Tree: PrimaryTree, X: 8, Y: 8, Width: 4, Height: 4, Mode: Intra, IntraMode: 2}
	patch := []uint16{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25}
	p.WriteSamples(Luma, 8, 8, 4, 4, patch)

	var snap ReconstructionState
	snap.SaveStateTo(cu, p)

	// A losing candidate mutates both the CU payload and the samples.
	cu.IntraMode = 9
	overwrite := make([]uint16, 16)
	p.WriteSamples(Luma, 8, 8, 4, 4, overwrite)

	snap.LoadStateFrom(cu, p)
	if cu.IntraMode != 2 {
		t.Fatalf("LoadStateFrom did not restore IntraMode, got %d", cu.IntraMode)
	}

	restored := make([]uint16, 16)
	p.ReadSamples(Luma, 8, 8, 4, 4, restored)
	for i, v := range restored {
		if v != patch[i] {
			t.Fatalf("sample %d = %d, want %d after restore", i, v, patch[i])
		}
	}
}
