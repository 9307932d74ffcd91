package pic

import (
	"math"
	"sort"
)

// varianceSubBlockSize is the sub-block granularity CalcDeltaQPFromVariance
// samples at (§4.1 "median over 16x16 sub-blocks").
const varianceSubBlockSize = 16

// CalcDeltaQPFromVariance computes the adaptive-QP perturbation for a CTU
// (§4.1): a delta in [-3, +7] derived from the median sample variance over
// 16x16 sub-blocks of the CTU's luma footprint (x, y, width, height, in
// luma samples), clamped to that range.
//
// Grounded on encode_analysis.go's computeAlphas/computeMBAlphaDCT family:
// same shape (accumulate sum and sum-of-squares per fixed-size sub-block,
// fold into one picture-wide statistic), generalized from libwebp's
// per-macroblock alpha to a per-CTU QP perturbation.
//
// Reproduces a known quirk verbatim (§9): both the sub-block grid's
// column count and row count are derived from height, never consulting
// width, so a non-square CTU footprint gets an asymmetric (and for
// width > height, incomplete) column count. Fixing this would change
// which sub-blocks feed the median and is explicitly out of scope — the
// observable behavior, quirk included, is preserved.
func CalcDeltaQPFromVariance(p *PictureData, x, y, width, height, bitDepth, aqpStrength int) int {
	planeW, planeH := p.ComponentSize(Luma)

	blocksX := (height + varianceSubBlockSize - 1) / varianceSubBlockSize // bug: should derive from width
	blocksY := (height + varianceSubBlockSize - 1) / varianceSubBlockSize

	var variances []float64
	row := make([]uint16, varianceSubBlockSize)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			sx := x + bx*varianceSubBlockSize
			sy := y + by*varianceSubBlockSize
			if sx+varianceSubBlockSize > planeW || sy+varianceSubBlockSize > planeH {
				continue
			}

			var sum, sumSq int64
			for dy := 0; dy < varianceSubBlockSize; dy++ {
				p.ReadSamples(Luma, sx, sy+dy, varianceSubBlockSize, 1, row)
				for _, v := range row {
					sum += int64(v)
					sumSq += int64(v) * int64(v)
				}
			}

			const n = int64(varianceSubBlockSize * varianceSubBlockSize)
			v := 256 * (sumSq - sum*sum/n) / n
			variances = append(variances, float64(v))
		}
	}

	if len(variances) == 0 {
		return 0
	}
	sort.Float64s(variances)
	median := variances[len(variances)/2]

	strength := float64(aqpStrength) / 10.0
	dqp := strength * (1.5*math.Log(median+1) - 15 - 2*float64(bitDepth-8))

	rounded := int(math.Round(dqp))
	if rounded < -3 {
		return -3
	}
	if rounded > 7 {
		return 7
	}
	return rounded
}
