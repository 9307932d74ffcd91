package rdo

import (
	"testing"

	"github.com/xvc-go/xvccore/pic"
	"github.com/xvc-go/xvccore/search"
)

func newTestTransformEncoder() *TransformEncoder {
	return NewTransformEncoder(search.ReferenceTransform{}, search.ReferenceQuantizer{})
}

func TestEncodeLeafIsCbfZeroWhenPredictionIsExact(t *testing.T) {
	recon := newTestPicture(8, 8)
	src := newTestPicture(8, 8)
	fillFlat(recon, 77)
	fillFlat(src, 77)

	cu := &pic.CodingUnit{Tree: pic.PrimaryTree, X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	for c := range cu.TransformSelectIdx {
		cu.TransformSelectIdx[c] = pic.NoTransformSelect
	}
	qp := pic.NewQP([pic.MaxComponents]int{32, 32, 32}, 8)

	te := newTestTransformEncoder()
	d, _ := te.EncodeLeaf(cu, recon, src, qp, NewEncoderSettings())

	if d != 0 {
		t.Fatalf("distortion = %d, want 0 when prediction already matches source exactly", d)
	}
	if cu.CBF[pic.Luma] {
		t.Fatal("CBF should be false when the zero-residual candidate is already lossless")
	}
}

func TestEncodeLeafCorrectsAMismatchedPrediction(t *testing.T) {
	recon := newTestPicture(8, 8)
	src := newTestPicture(8, 8)
	fillFlat(recon, 40)
	fillFlat(src, 160)

	cu := &pic.CodingUnit{Tree: pic.PrimaryTree, X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	for c := range cu.TransformSelectIdx {
		cu.TransformSelectIdx[c] = pic.NoTransformSelect
	}
	qp := pic.NewQP([pic.MaxComponents]int{16, 16, 16}, 8)

	te := newTestTransformEncoder()
	d, bits := te.EncodeLeaf(cu, recon, src, qp, NewEncoderSettings())

	if bits == 0 {
		t.Fatal("correcting a large mismatch should cost a non-zero number of bits")
	}
	if d >= Distortion(120*120*64) {
		t.Fatalf("distortion = %d, want improvement over leaving the mismatch uncorrected", d)
	}
}

func TestNormalSignalingAllowedIntraLumaSparseCoefficientsRejected(t *testing.T) {
	cu := &pic.CodingUnit{Mode: pic.Intra}
	if normalSignalingAllowed(cu, pic.Luma, 2, 2) {
		t.Fatal("intra luma transform_select_idx > 0 with fewer than 3 non-zero coefficients must be rejected")
	}
	if !normalSignalingAllowed(cu, pic.Luma, 2, 3) {
		t.Fatal("3 non-zero coefficients should be allowed")
	}
	if !normalSignalingAllowed(cu, pic.Luma, pic.NoTransformSelect, 0) {
		t.Fatal("idx == NoTransformSelect is exempt from the sparse-coefficient rule")
	}
}

func TestNormalSignalingAllowedInterLumaZeroCoefficientsRejected(t *testing.T) {
	cu := &pic.CodingUnit{Mode: pic.Inter}
	if normalSignalingAllowed(cu, pic.Luma, 1, 0) {
		t.Fatal("inter luma with transform-select active and zero non-zero coefficients must be rejected")
	}
	if !normalSignalingAllowed(cu, pic.Luma, 1, 1) {
		t.Fatal("one non-zero coefficient should be allowed")
	}
}

func TestNormalSignalingAllowedChromaIsUnrestricted(t *testing.T) {
	cu := &pic.CodingUnit{Mode: pic.Intra}
	if !normalSignalingAllowed(cu, pic.Cb, 3, 0) {
		t.Fatal("the sparse-coefficient rule only applies to luma")
	}
}

func TestResidualDomainSSD(t *testing.T) {
	a := []int16{1, 2, 3}
	b := []int16{1, 2, 3}
	if got := residualDomainSSD(a, b); got != 0 {
		t.Fatalf("residualDomainSSD(identical) = %d, want 0", got)
	}
	if got := residualDomainSSD([]int16{0}, []int16{3}); got != 9 {
		t.Fatalf("residualDomainSSD = %d, want 9", got)
	}
	if got := residualDomainSSD([]int16{-5}, []int16{5}); got != 100 {
		t.Fatalf("residualDomainSSD = %d, want 100", got)
	}
}

func TestAddClampSaturatesToBitDepthRange(t *testing.T) {
	pred := []uint16{0, 255, 10}
	residual := []int16{-10, 10, 5}
	got := addClamp(pred, residual, 8)
	want := []uint16{0, 255, 15}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("addClamp[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
