// Package cucache memoizes prediction decisions within a quad split
// (§4.3) so that a later evaluation of the same block (same tree, depth,
// position and size) can cheaply reuse "what modes have been explored
// here" and "what was the best so far". The cache
// never affects correctness — removing it must produce identical
// output, modulo runtime — so every method here is a pure bookkeeping
// operation over a small in-memory table, grounded on the per-
// macroblock context caches real block codecs keep (it.topModes/
// leftModes, enc.topNz/leftNz in encode_iterator.go): a small
// fixed-shape lookup keyed by position, invalidated on a coarser
// boundary.
package cucache

import "github.com/xvc-go/xvccore/pic"

// Entry is what Lookup reports about the cached knowledge for a block:
// a prediction-parameter donor CU (if cacheable) plus which mode families
// have already been exercised there.
type Entry struct {
	CU        *pic.CodingUnit
	Cacheable bool
	AnyIntra  bool
	AnySkip   bool
	AnyInter  bool
}

type key struct {
	tree  pic.Tree
	depth int
	x, y  int
	w, h  int
}

// Cache is the CU cache. Not safe for concurrent use — the RDO driver is
// single-threaded per CTU (§5). Entries persist until Invalidate removes
// them, across CTUs and pictures alike.
type Cache struct {
	entries map[key]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[key]Entry)}
}

// Invalidate wipes every entry recorded at (tree, depth), called when the
// driver enters a new quad so stale entries from a sibling quad at the
// same depth never leak in.
func (c *Cache) Invalidate(tree pic.Tree, depth int) {
	for k := range c.entries {
		if k.tree == tree && k.depth == depth {
			delete(c.entries, k)
		}
	}
}

// Lookup reports what is known about a block equivalent to cu (same
// tree, depth, position, and size). The zero Entry (Cacheable == false)
// means nothing is cached for this block yet.
func (c *Cache) Lookup(tree pic.Tree, depth int, cu *pic.CodingUnit) Entry {
	return c.entries[keyFor(tree, depth, cu)]
}

// Store records cu's outcome as the cached result for its own
// (tree, depth, position, size), to be read back later by Lookup for an
// equivalent block.
func (c *Cache) Store(tree pic.Tree, depth int, cu *pic.CodingUnit) {
	e := Entry{
		CU:        cu,
		Cacheable: true,
		AnyIntra:  cu.Mode == pic.Intra,
		AnySkip:   cu.Skip,
		AnyInter:  cu.Mode == pic.Inter,
	}
	if prev, ok := c.entries[keyFor(tree, depth, cu)]; ok {
		e.AnyIntra = e.AnyIntra || prev.AnyIntra
		e.AnySkip = e.AnySkip || prev.AnySkip
		e.AnyInter = e.AnyInter || prev.AnyInter
	}
	c.entries[keyFor(tree, depth, cu)] = e
}

func keyFor(tree pic.Tree, depth int, cu *pic.CodingUnit) key {
	return key{tree: tree, depth: depth, x: cu.X, y: cu.Y, w: cu.Width, h: cu.Height}
}
