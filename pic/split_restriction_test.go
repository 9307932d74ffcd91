package pic

import "testing"

func TestSplitRestrictionAllows(t *testing.T) {
	r := SplitRestriction{NoHorizontal: true}
	if r.Allows(SplitHorizontal) {
		t.Fatal("expected horizontal split disallowed")
	}
	if !r.Allows(SplitVertical) || !r.Allows(SplitQuad) || !r.Allows(SplitNone) {
		t.Fatal("restriction on one axis must not affect the others")
	}
}

func TestForSecondChildMirrorsFirstChildAxis(t *testing.T) {
	r := ForSecondChild(SplitVertical)
	if !r.NoVertical || r.NoHorizontal {
		t.Fatalf("ForSecondChild(Vertical) = %+v, want only NoVertical set", r)
	}

	r2 := ForSecondChild(SplitHorizontal)
	if !r2.NoHorizontal || r2.NoVertical {
		t.Fatalf("ForSecondChild(Horizontal) = %+v, want only NoHorizontal set", r2)
	}

	if got := ForSecondChild(SplitNone); got != (SplitRestriction{}) {
		t.Fatalf("ForSecondChild(SplitNone) = %+v, want zero value", got)
	}
}
