package rdo

// BitCountingMode names the two split-bit accounting disciplines (§4.1
// "Bit counting"). CompressCu does not read it: under either value it
// adds a node's split-syntax bits to each candidate's total after that
// candidate's children have been evaluated, and WriteCtu performs no
// comparison against a real-mode writer.
type BitCountingMode int

const (
	// StrictBitCounting names the discipline that charges split-syntax
	// bits before descending. It is the default value.
	StrictBitCounting BitCountingMode = iota
	// CountActualWrittenBits names the discipline that charges
	// split-syntax bits after the recursion returns.
	CountActualWrittenBits
)

// EncoderSettings surfaces every fast_*/kEncoder* toggle named in §4.1-
// §4.3 as first-class configuration rather than hidden constants (§9
// Design Notes), constructed with functional options the way
// EncodeConfig/decoderParameterFunc are (encode.go DefaultConfig,
// WithX(...)).
type EncoderSettings struct {
	BitCountingMode BitCountingMode

	// Partitioning speed-ups.
	FullCostSplitSkip               bool
	FastQuadSplitBasedOnBinarySplit bool
	ExtendedTransformSizes          bool

	// MaxBinarySplitDepth indexes the quad-skip truth table
	// FastQuadSplitBasedOnBinarySplit consults (§4.1). It selects the
	// table row only; candidate eligibility does not limit BinaryDepth
	// by it.
	MaxBinarySplitDepth int

	// Inter mode menu speed-ups.
	FastMergeSkip  bool
	FastSkipInter  bool
	FastSkipIntra  bool

	AlwaysEvaluateIntraInInter bool

	// Transform-selection engine.
	BiasTransformSelectCost bool
	FastInterTransformDist  bool

	// Adaptive QP.
	AdaptiveQp         bool
	AdaptiveQpStrength int // aqp_strength; strength = AdaptiveQpStrength/10

	// Cache-assisted speed-up (§4.1 "cache hit as first CU in a quad").
	FastCuCache bool

	// kNumInterMergeCandidates.
	NumInterMergeCandidates int
}

// Option configures an EncoderSettings at construction.
type Option func(*EncoderSettings)

// DefaultEncoderSettings returns every speed-up disabled, strict bit
// counting, and the named fixed constants (5 merge candidates, aqp
// strength 10 i.e. strength=1.0) — the conservative, fully-exhaustive
// baseline every fast_* toggle is measured against.
func DefaultEncoderSettings() EncoderSettings {
	return EncoderSettings{
		BitCountingMode:         StrictBitCounting,
		AdaptiveQpStrength:      10,
		NumInterMergeCandidates: 5,
		MaxBinarySplitDepth:     4,
	}
}

// NewEncoderSettings returns DefaultEncoderSettings with opts applied.
func NewEncoderSettings(opts ...Option) EncoderSettings {
	s := DefaultEncoderSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithBitCountingMode(m BitCountingMode) Option {
	return func(s *EncoderSettings) { s.BitCountingMode = m }
}

func WithFullCostSplitSkip(v bool) Option {
	return func(s *EncoderSettings) { s.FullCostSplitSkip = v }
}

func WithFastQuadSplitBasedOnBinarySplit(v bool) Option {
	return func(s *EncoderSettings) { s.FastQuadSplitBasedOnBinarySplit = v }
}

func WithExtendedTransformSizes(v bool) Option {
	return func(s *EncoderSettings) { s.ExtendedTransformSizes = v }
}

func WithFastMergeSkip(v bool) Option {
	return func(s *EncoderSettings) { s.FastMergeSkip = v }
}

func WithFastSkipInter(v bool) Option {
	return func(s *EncoderSettings) { s.FastSkipInter = v }
}

func WithFastSkipIntra(v bool) Option {
	return func(s *EncoderSettings) { s.FastSkipIntra = v }
}

func WithAlwaysEvaluateIntraInInter(v bool) Option {
	return func(s *EncoderSettings) { s.AlwaysEvaluateIntraInInter = v }
}

func WithBiasTransformSelectCost(v bool) Option {
	return func(s *EncoderSettings) { s.BiasTransformSelectCost = v }
}

func WithFastInterTransformDist(v bool) Option {
	return func(s *EncoderSettings) { s.FastInterTransformDist = v }
}

func WithAdaptiveQp(v bool) Option {
	return func(s *EncoderSettings) { s.AdaptiveQp = v }
}

func WithAdaptiveQpStrength(strength int) Option {
	return func(s *EncoderSettings) { s.AdaptiveQpStrength = strength }
}

func WithFastCuCache(v bool) Option {
	return func(s *EncoderSettings) { s.FastCuCache = v }
}

func WithNumInterMergeCandidates(n int) Option {
	return func(s *EncoderSettings) { s.NumInterMergeCandidates = n }
}

func WithMaxBinarySplitDepth(n int) Option {
	return func(s *EncoderSettings) { s.MaxBinarySplitDepth = n }
}
