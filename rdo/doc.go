// Package rdo implements the CTU rate-distortion optimization driver
// (CuEncoder, §4.1) and the transform-selection engine (TransformEncoder,
// §4.2): given an empty CU tree root, a source picture, and a
// reconstruction picture, it fills in the partition and per-leaf
// decisions that minimize cost = D + round(bits·lambda), writing the
// winning reconstruction in place and returning the winning subtree's
// distortion and fractional bit count.
//
// Grounded throughout on deepteams-webp's encode_frame.go
// (pickBestMode/tryI4ModesRD: evaluate a candidate, compare by RDScore,
// swap on improvement) and encode_quant.go (RDScore's cost = rate*lambda
// + RD_DISTO_MULT*distortion shape), generalized from WebP's fixed
// macroblock-mode menu to a recursive quad/binary partition search and
// a richer per-component transform-selection candidate set.
package rdo
