// Package syntax is the contract boundary between the RDO search and the
// actual bitstream: a SyntaxWriter counts or emits the bits a coding
// decision would cost, and a CuWriter walks a committed CU subtree writing
// its syntax elements through one. Neither type implements an entropy
// coder — the real bit-level format is left as an external collaborator
// — so WriteX methods here only move a bit counter and, for
// RealWriter, append to a byte sink. No package in this module ever reads
// these bytes back; they exist to make the cost model exercisable and to
// let the strict-mode invariant (speculative count == real count) be
// checked.
package syntax
