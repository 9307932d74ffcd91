package pic

// Restrictions is the value type enumerating which syntactic features a
// coded segment has disabled. Rather than broadcasting it through a
// process- or thread-local slot (§6, §9), it is threaded explicitly as
// a plain value through every call that needs it, with no
// package-level mutable state anywhere in this module — a per-thread
// cache, if one were added later, would be purely a parameter-passing
// optimization on top of this, not a behavioral dependency.
//
// Grouped by the coding-tool family each toggle gates; the zero value
// (everything false) restricts nothing.
type Restrictions struct {
	// Partitioning.
	DisableQuadSplit           bool
	DisableHorizontalSplit     bool
	DisableVerticalSplit       bool
	DisableSplitAtCtu          bool
	DisableChromaTreeExtraStep bool

	// Intra prediction.
	DisableIntraMode               bool
	DisableIntraBilinearPredictor  bool
	DisableIntraRefSampleFiltering bool
	DisableIntraDcPostFilter       bool

	// Inter prediction / motion.
	DisableInter              bool
	DisableInterMvp           bool
	DisableInterScalingMv     bool
	DisableInterLocalIlluComp bool
	DisableInterFullpelMv     bool
	DisableInterBipred        bool
	DisableInterWarpMotion    bool

	// Merge / skip.
	DisableMerge      bool
	DisableAffine     bool
	DisableSkipMode   bool
	DisableForceSkip  bool

	// Transform / residual.
	DisableTransformSkip       bool
	DisableTransformSelect     bool
	DisableRootCbfZero         bool
	DisableComponentCbfZero    bool
	DisableInterTransformSizes bool
	DisableHighPrecisionRdoq   bool

	// Quantization.
	DisableDeltaQp      bool
	DisableAdaptiveQp   bool
	DisableChromaQpOffset bool

	// In-loop filters (contracted externally; only the toggle lives here).
	DisableDeblocking         bool
	DisableDeblockingChroma   bool
	DisableSao                bool

	// Entropy / syntax surface (contracted externally).
	DisableCabacInitPerPicture bool
	DisableSignHiding          bool
	DisableEndOfSliceFlag      bool

	// Reference management.
	DisableTemporalMvPrediction bool
	DisableMultiRefPictures     bool
	DisableLongTermReferences   bool

	// Picture/segment-level toggles.
	DisableAdaptiveGopStructure bool
	DisableHighestTemporalLayer bool
	DisableScreenContentTools   bool
}

// AnySplitDisabled reports whether at least one of the quad, horizontal
// and vertical split toggles is set. The RDO driver checks those toggles
// individually and does not call this method.
func (r Restrictions) AnySplitDisabled() bool {
	return r.DisableQuadSplit || r.DisableHorizontalSplit || r.DisableVerticalSplit
}
