package pic

import "testing"

func TestArenaCreateCUInitializesTransformSelect(t *testing.T) {
	a := NewArena()
	cu := a.CreateCU(PrimaryTree, 0, 0, 32, 32)
	for c := 0; c < MaxComponents; c++ {
		if cu.TransformSelectIdx[c] != NoTransformSelect {
			t.Errorf("component %d TransformSelectIdx = %d, want NoTransformSelect", c, cu.TransformSelectIdx[c])
		}
	}
	if cu.Width != 32 || cu.Height != 32 {
		t.Fatalf("unexpected size %dx%d", cu.Width, cu.Height)
	}
}

func TestArenaReleaseAndReuse(t *testing.T) {
	a := NewArena()
	cu := a.CreateCU(PrimaryTree, 0, 0, 16, 16)
	cu.Coeffs[Luma] = []int16{1, 2, 3}
	a.ReleaseCU(cu)

	reused := a.CreateCU(PrimaryTree, 64, 64, 8, 8)
	if len(reused.Coeffs[Luma]) != 0 {
		t.Fatal("reused CU must not carry stale coefficients")
	}
	if reused.X != 64 || reused.Width != 8 {
		t.Fatal("reused CU must reflect the new position/size")
	}
}

func TestArenaReleaseRecursesIntoChildren(t *testing.T) {
	a := NewArena()
	root := a.CreateCU(PrimaryTree, 0, 0, 32, 32)
	root.Split = SplitQuad
	for i := 0; i < 4; i++ {
		root.Children = append(root.Children, a.CreateCU(PrimaryTree, i*16, 0, 16, 16))
	}

	a.ReleaseCU(root)
	if len(a.free) != 5 {
		t.Fatalf("expected 5 nodes freed (root + 4 children), got %d", len(a.free))
	}
	if root.Children != nil {
		t.Fatal("ReleaseCU must clear Children on the released node")
	}
}

func TestArenaScratchCUStableAcrossCalls(t *testing.T) {
	a := NewArena()
	s1 := a.ScratchCU(PrimaryTree, 2)
	s1.IntraMode = 7
	s2 := a.ScratchCU(PrimaryTree, 2)
	if s1 != s2 {
		t.Fatal("ScratchCU must return the same node for the same (tree, depth)")
	}

	other := a.ScratchCU(SecondaryTree, 2)
	if other == s1 {
		t.Fatal("ScratchCU must not alias across trees")
	}
}

func TestArenaReleaseScratchClearsTable(t *testing.T) {
	a := NewArena()
	s := a.ScratchCU(PrimaryTree, 0)
	s.Split = SplitQuad
	s.Children = []*CodingUnit{a.CreateCU(PrimaryTree, 0, 0, 8, 8)}

	a.ReleaseScratch()
	if len(a.scratch) != 0 {
		t.Fatal("ReleaseScratch must empty the scratch table")
	}

	fresh := a.ScratchCU(PrimaryTree, 0)
	if fresh.Split != SplitNone || fresh.Children != nil {
		t.Fatal("a re-requested scratch slot after ReleaseScratch must come back clean")
	}
}
