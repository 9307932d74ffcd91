package syntax

import (
	"testing"

	"github.com/xvc-go/xvccore/pic"
)

func newLeafCU(x, y, w, h int) *pic.CodingUnit {
	cu := &pic.CodingUnit{Tree: pic.PrimaryTree, X: x, Y: y, Width: w, Height: h, Split: pic.SplitNone, Mode: pic.Intra}
	for c := 0; c < pic.MaxComponents; c++ {
		cu.TransformSelectIdx[c] = pic.NoTransformSelect
	}
	return cu
}

func TestWriteSplitLeafChargesOnlyFlag(t *testing.T) {
	cu := newLeafCU(0, 0, 16, 16)
	w := NewBitCounter()
	DefaultCuWriter{}.WriteSplit(cu, pic.SplitRestriction{}, w)
	if got := w.GetFractionalBits(); got != splitFlagCost {
		t.Fatalf("leaf WriteSplit cost = %d, want %d", got, splitFlagCost)
	}
}

func TestWriteSplitQuadChargesNoAxisBit(t *testing.T) {
	cu := &pic.CodingUnit{Split: pic.SplitQuad}
	w := NewBitCounter()
	DefaultCuWriter{}.WriteSplit(cu, pic.SplitRestriction{}, w)
	want := uint32(splitFlagCost + quadVsBinaryCost)
	if got := w.GetFractionalBits(); got != want {
		t.Fatalf("quad WriteSplit cost = %d, want %d (no axis bit for quad)", got, want)
	}
}

func TestWriteSplitBinaryRestrictedAxisSkipsBit(t *testing.T) {
	cu := &pic.CodingUnit{Split: pic.SplitHorizontal}
	restriction := pic.SplitRestriction{NoVertical: true}

	w := NewBitCounter()
	DefaultCuWriter{}.WriteSplit(cu, restriction, w)
	want := uint32(splitFlagCost + quadVsBinaryCost)
	if got := w.GetFractionalBits(); got != want {
		t.Fatalf("restricted-axis WriteSplit cost = %d, want %d", got, want)
	}

	free := NewBitCounter()
	DefaultCuWriter{}.WriteSplit(cu, pic.SplitRestriction{}, free)
	wantFree := uint32(splitFlagCost + quadVsBinaryCost + splitAxisCost)
	if got := free.GetFractionalBits(); got != wantFree {
		t.Fatalf("unrestricted WriteSplit cost = %d, want %d", got, wantFree)
	}
}

func TestWriteResidualDataRdoCbfZeroCostsOnlyFlag(t *testing.T) {
	cu := newLeafCU(0, 0, 8, 8)
	w := NewBitCounter()
	DefaultCuWriter{}.WriteResidualDataRdoCbf(cu, pic.Luma, w)
	if got := w.GetFractionalBits(); got != cbfCost {
		t.Fatalf("zero-CBF residual cost = %d, want %d", got, cbfCost)
	}
}

func TestWriteResidualDataRdoCbfNonZeroChargesPerCoefficient(t *testing.T) {
	cu := newLeafCU(0, 0, 8, 8)
	cu.CBF[pic.Luma] = true
	cu.Coeffs[pic.Luma] = []int16{0, 3, 0, -5, 0}

	w := NewBitCounter()
	DefaultCuWriter{}.WriteResidualDataRdoCbf(cu, pic.Luma, w)
	want := uint32(cbfCost + 2*coeffLevelCost)
	if got := w.GetFractionalBits(); got != want {
		t.Fatalf("non-zero residual cost = %d, want %d", got, want)
	}
}

func TestWriteCtuRecursesWholeTree(t *testing.T) {
	h := &pic.SegmentHeader{ChromaFormat: pic.Chroma420, BitDepth: 8, MaxDepth: [2]int{3, 4}}
	qp := pic.NewQP([pic.MaxComponents]int{30, 30, 30}, 8)
	p := pic.NewPictureData(32, 32, 32, h, true, false, qp, false)

	root := p.CreateCu(pic.PrimaryTree, 0, 0, 32, 32)
	root.Split = pic.SplitHorizontal
	top := newLeafCU(0, 0, 32, 16)
	top.Split = pic.SplitVertical
	topLeft := newLeafCU(0, 0, 16, 16)
	topRight := newLeafCU(16, 0, 16, 16)
	top.Children = []*pic.CodingUnit{topLeft, topRight}
	bottom := newLeafCU(0, 16, 32, 16)
	root.Children = []*pic.CodingUnit{top, bottom}

	w := NewBitCounter()
	wroteDeltaQp := DefaultCuWriter{}.WriteCtu(root, p, w)

	if wroteDeltaQp {
		t.Fatal("adaptive QP disabled: WriteCtu must not report a delta-QP write")
	}
	if w.GetFractionalBits() == 0 {
		t.Fatal("WriteCtu over a non-trivial tree must charge a non-zero cost")
	}
}

func TestWriteCtuAdaptiveQpChargesDeltaQp(t *testing.T) {
	h := &pic.SegmentHeader{ChromaFormat: pic.Chroma420, BitDepth: 8}
	qp := pic.NewQP([pic.MaxComponents]int{30, 30, 30}, 8)
	p := pic.NewPictureData(16, 16, 16, h, true, false, qp, true)

	leaf := p.CreateCu(pic.PrimaryTree, 0, 0, 16, 16)
	leaf.Mode = pic.Intra
	leaf.QP = pic.NewQP([pic.MaxComponents]int{34, 34, 34}, 8)
	for c := 0; c < pic.MaxComponents; c++ {
		leaf.TransformSelectIdx[c] = pic.NoTransformSelect
	}

	w := NewBitCounter()
	wroteDeltaQp := DefaultCuWriter{}.WriteCtu(leaf, p, w)
	if !wroteDeltaQp {
		t.Fatal("adaptive QP enabled: WriteCtu should report a delta-QP write")
	}
}
