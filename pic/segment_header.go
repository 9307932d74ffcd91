package pic

// ChromaFormat names the chroma subsampling of a coded segment.
type ChromaFormat int

const (
	ChromaMonochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

// SegmentHeader is the per-coded-segment configuration (§3): which
// syntactic restrictions are active, the sequence-order counter
// identifying this segment, chroma format, and bit depth.
type SegmentHeader struct {
	// SOC is the sequence-order counter identifying this segment.
	// decode.Pool workers record the SOC of the last item they
	// processed; they keep no cached Restrictions of their own.
	SOC int64

	Restrictions Restrictions

	ChromaFormat ChromaFormat
	BitDepth     int

	// MaxDepth[tree] is the maximum quad-split depth for that tree, per
	// §4.1's eligibility rule "depth < max_depth(tree)".
	MaxDepth [2]int

	// ExtendedTransformSizes raises kMaxTrSize from 32 to 64 (§4.1).
	ExtendedTransformSizes bool

	// HighestTemporalLayer marks the segment as belonging to the
	// highest temporal layer. The full-cost split-skip threshold (§4.1
	// step 2: 2 at the highest layer, else 3) does not read this field;
	// it reads PictureData.IsHighestLayer, set by NewPictureData's
	// highestLayer argument.
	HighestTemporalLayer bool
}

// MaxTrSize returns kMaxTrSize for this segment: 64 when extended
// transform sizes are enabled, else 32 (§4.1 eligibility rule for Full).
func (h *SegmentHeader) MaxTrSize() int {
	if h.ExtendedTransformSizes {
		return 64
	}
	return 32
}

// NumComponents returns how many sample planes this chroma format carries.
func (f ChromaFormat) NumComponents() int {
	if f == ChromaMonochrome {
		return 1
	}
	return 3
}
