// Package decode implements the multithreaded decoder pipeline (§4.4,
// §5): a fixed pool of workers honoring inter-picture dependencies,
// exposing a serial host API while decoding runs out of order. The
// bitstream itself — NAL parsing, entropy decoding, sample
// reconstruction — is an external collaborator; Pool only schedules work
// and tracks the three-phase picture lifecycle (§3 OutputStatus) around
// whatever Decode/Postprocess callbacks the host supplies.
//
// Grounded on internal/lossy/encode_parallel.go's rowSync: a per-unit
// mutex+condition-variable+atomic-fast-path synchronization primitive.
// rowSync gates on a single monotonically increasing row-completion
// counter; Pool gates on an arbitrary picture dependency DAG scanned
// FIFO-with-skip, which a single counter cannot express, so the
// scan-and-skip worker loop and the separate finished-work FIFO are new
// code written in the same mutex-and-cond idiom.
package decode
