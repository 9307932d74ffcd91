// Package search holds the black-box collaborators the RDO driver calls
// into but never implements itself: intra/inter mode search and the
// forward/inverse transform plus quantizer (§6). A hard line is drawn
// around these: the RDO driver treats them as black-box subroutines
// whose only visible state is inside the CU and the reconstruction
// picture, so every type here is a pluggable interface
// plus one minimal reference implementation good enough to drive the RDO
// driver and decoder end to end in tests. None of it is bitstream-
// accurate or claims to resemble any real codec's prediction/transform
// kernels; angle formulas, ME search patterns, and transform kernels are
// explicit non-goals.
package search

// SSD returns the sum of squared differences between two equal-length
// sample slices, the distortion metric used throughout the RDO driver.
func SSD(a, b []uint16) uint64 {
	var sum uint64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		sum += uint64(d * d)
	}
	return sum
}
