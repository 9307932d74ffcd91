package pic

// SplitRestriction forbids one binary-split axis at the current node,
// independent of the general Restrictions toggles. §4.1 "SplitRestriction
// propagation": when a binary split commits, its second child is passed a
// SplitRestriction ruling out the axis that would reproduce a tiling
// already reachable via a quad split, so the same partition can never be
// encoded two distinct ways.
//
// Lives in pic rather than rdo or syntax because both the RDO driver and
// the CuWriter contract need to read it, and pic is the only package both
// of those depend on without creating an import cycle between them.
type SplitRestriction struct {
	NoHorizontal bool
	NoVertical   bool
}

// Allows reports whether split type s is still eligible under r.
func (r SplitRestriction) Allows(s SplitType) bool {
	switch s {
	case SplitHorizontal:
		return !r.NoHorizontal
	case SplitVertical:
		return !r.NoVertical
	default:
		return true
	}
}

// ForSecondChild derives the restriction passed to the second child of a
// committed binary split, given the split the first child itself chose
// (firstChildSplit). If the parent split one way and its first child split
// the other way, letting the second child split the same way as its
// sibling would reproduce a tiling already reachable as a plain quad split
// (horizontal-then-both-vertical == vertical-then-both-horizontal == quad);
// forbidding that axis on the second child makes each quad-equivalent
// tiling reachable through exactly one partition sequence.
func ForSecondChild(firstChildSplit SplitType) SplitRestriction {
	switch firstChildSplit {
	case SplitHorizontal:
		return SplitRestriction{NoHorizontal: true}
	case SplitVertical:
		return SplitRestriction{NoVertical: true}
	default:
		return SplitRestriction{}
	}
}
