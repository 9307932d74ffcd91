package cucache

import (
	"testing"

	"github.com/xvc-go/xvccore/pic"
)

func TestLookupMissReturnsNotCacheable(t *testing.T) {
	c := New()
	cu := &pic.CodingUnit{X: 0, Y: 0, Width: 16, Height: 16}
	e := c.Lookup(pic.PrimaryTree, 1, cu)
	if e.Cacheable {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestStoreThenLookupHit(t *testing.T) {
	c := New()
	cu := &pic.CodingUnit{X: 16, Y: 0, Width: 16, Height: 16, Mode: pic.Intra}
	c.Store(pic.PrimaryTree, 2, cu)

	same := &pic.CodingUnit{X: 16, Y: 0, Width: 16, Height: 16}
	e := c.Lookup(pic.PrimaryTree, 2, same)
	if !e.Cacheable || !e.AnyIntra || e.AnyInter {
		t.Fatalf("unexpected cache entry: %+v", e)
	}
	if e.CU != cu {
		t.Fatal("Lookup should return the stored CU as prediction donor")
	}
}

func TestStoreAccumulatesModeFamilies(t *testing.T) {
	c := New()
	intraCU := &pic.CodingUnit{X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	c.Store(pic.PrimaryTree, 3, intraCU)

	interCU := &pic.CodingUnit{X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Inter, Skip: true}
	c.Store(pic.PrimaryTree, 3, interCU)

	e := c.Lookup(pic.PrimaryTree, 3, interCU)
	if !e.AnyIntra || !e.AnyInter || !e.AnySkip {
		t.Fatalf("expected accumulated mode families, got %+v", e)
	}
}

func TestInvalidateOnlyClearsMatchingDepthAndTree(t *testing.T) {
	c := New()
	a := &pic.CodingUnit{X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	b := &pic.CodingUnit{X: 8, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	c.Store(pic.PrimaryTree, 1, a)
	c.Store(pic.PrimaryTree, 2, b)
	c.Store(pic.SecondaryTree, 1, a)

	c.Invalidate(pic.PrimaryTree, 1)

	if c.Lookup(pic.PrimaryTree, 1, a).Cacheable {
		t.Fatal("Invalidate(PrimaryTree, 1) should have cleared the matching entry")
	}
	if !c.Lookup(pic.PrimaryTree, 2, b).Cacheable {
		t.Fatal("Invalidate should not touch a different depth")
	}
	if !c.Lookup(pic.SecondaryTree, 1, a).Cacheable {
		t.Fatal("Invalidate should not touch a different tree")
	}
}

func TestDifferentPositionsDoNotAlias(t *testing.T) {
	c := New()
	a := &pic.CodingUnit{X: 0, Y: 0, Width: 8, Height: 8, Mode: pic.Intra}
	c.Store(pic.PrimaryTree, 1, a)

	elsewhere := &pic.CodingUnit{X: 32, Y: 32, Width: 8, Height: 8}
	if c.Lookup(pic.PrimaryTree, 1, elsewhere).Cacheable {
		t.Fatal("a different position must not hit the cache")
	}
}
