package pic

// Arena is the per-picture CU pool. CUs drawn from it back both the
// committed coding tree hanging off each CTU and the RDO driver's scratch
// slots used to evaluate a candidate without mutating the current best (§3
// "Ownership and lifecycle"). Children are exclusively owned by their
// parent; releasing a node recursively releases its subtree.
//
// Grounded on deepteams-webp's encoderPool/lossyDecoderPool (encode.go,
// decode.go): both reuse whole structs across calls via sync.Pool,
// resetting mutable fields but keeping backing slices. Arena applies the
// same reset-don't-reallocate discipline to individual CU nodes instead of
// whole encoder/decoder structs, because a picture needs many CU nodes
// live simultaneously, not one struct reused serially.
type Arena struct {
	free []*CodingUnit

	// scratch holds exactly one CU per (tree, rdo-depth) slot: the RDO
	// driver evaluates its no-split (Full) candidate in that slot without
	// mutating the current best (§3).
	scratch map[scratchKey]*CodingUnit
}

type scratchKey struct {
	tree  Tree
	depth int
}

// NewArena returns an empty CU arena.
func NewArena() *Arena {
	return &Arena{scratch: make(map[scratchKey]*CodingUnit)}
}

// CreateCU allocates a CU node for the given tree/position/size, reusing a
// released node from the free list when one is available.
func (a *Arena) CreateCU(tree Tree, x, y, w, h int) *CodingUnit {
	var cu *CodingUnit
	if n := len(a.free); n > 0 {
		cu = a.free[n-1]
		a.free = a.free[:n-1]
		*cu = CodingUnit{}
	} else {
		cu = &CodingUnit{}
	}
	cu.Tree = tree
	cu.X, cu.Y = x, y
	cu.Width, cu.Height = w, h
	for c := 0; c < MaxComponents; c++ {
		cu.TransformSelectIdx[c] = NoTransformSelect
	}
	return cu
}

// ReleaseCU returns cu and its entire subtree to the free list. cu must
// not be referenced again by its former owner after this call.
func (a *Arena) ReleaseCU(cu *CodingUnit) {
	if cu == nil {
		return
	}
	for _, child := range cu.Children {
		a.ReleaseCU(child)
	}
	cu.Children = nil
	a.free = append(a.free, cu)
}

// ScratchCU returns the dedicated scratch CU for (tree, rdoDepth),
// allocating it on first use. The RDO driver uses this slot as the
// working CU for the no-split (Full) candidate, so the node under
// evaluation is not touched until that candidate wins. Only
// TransformSelectIdx is reset on reuse; other fields keep their values.
func (a *Arena) ScratchCU(tree Tree, rdoDepth int) *CodingUnit {
	key := scratchKey{tree, rdoDepth}
	cu, ok := a.scratch[key]
	if !ok {
		cu = &CodingUnit{}
		a.scratch[key] = cu
	}
	for c := 0; c < MaxComponents; c++ {
		cu.TransformSelectIdx[c] = NoTransformSelect
	}
	return cu
}

// ReleaseScratch returns every scratch slot to the arena's free list and
// clears the scratch table. Called once per picture, after the CTU loop
// completes (§3 "At the end of each picture these scratch CUs are
// released back to the arena").
func (a *Arena) ReleaseScratch() {
	for key, cu := range a.scratch {
		for _, child := range cu.Children {
			a.ReleaseCU(child)
		}
		cu.Children = nil
		a.free = append(a.free, cu)
		delete(a.scratch, key)
	}
}
