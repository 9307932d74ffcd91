// Package pic holds the coding-tree data model shared by the RDO search
// and the decoder: the CodingUnit quadtree/binary-tree, the per-picture CU
// arena that owns it, quantization parameters, syntactic restrictions, and
// the segment header that configures a coded segment.
//
// Nothing in this package performs prediction, transform, or entropy
// coding — those are external collaborators reached through the search
// and syntax packages. pic only describes the shape of a coding decision
// and the arena that backs it.
package pic
