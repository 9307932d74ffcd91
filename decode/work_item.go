package decode

import (
	"sync/atomic"

	"github.com/xvc-go/xvccore/pic"
)

// OutputStatus is a picture's position in the three-phase decode
// lifecycle (§3): Processing while a worker is inside Decode,
// PostProcessing while it is inside Postprocess, FinishedProcessing once
// both have returned, and HasNotBeenOutput once the host has drained the
// picture and handed it onward. The last transition is never made by
// Pool itself — it happens inside the host's WaitOne/WaitAll/
// WaitForPicture callback, at the moment the host is done with the
// picture.
type OutputStatus int32

const (
	Processing OutputStatus = iota
	PostProcessing
	FinishedProcessing
	HasNotBeenOutput
)

func (s OutputStatus) String() string {
	switch s {
	case Processing:
		return "processing"
	case PostProcessing:
		return "post-processing"
	case FinishedProcessing:
		return "finished-processing"
	case HasNotBeenOutput:
		return "has-not-been-output"
	default:
		return "unknown"
	}
}

// PictureDecoder is the mutable handle a WorkItem carries for one
// picture's decode result. Decode and Postprocess are supplied by the
// host — NAL parsing, entropy decoding, and sample reconstruction are
// external to this module (§6) — Pool only sequences calls to them and
// tracks Status across threads.
//
// Status is backed by an atomic so dependency checks (§4.4 step 2) can
// read it from any worker without holding Pool's mutex.
type PictureDecoder struct {
	// Decode is called with the NAL payload and the byte offset at
	// which this picture's data begins, plus its own and the
	// previous picture's segment header. Returns false on a
	// decode failure (§7, e.g. a checksum mismatch upstream).
	Decode func(nal []byte, offset int, header, prevHeader *pic.SegmentHeader) bool

	// Postprocess runs after Decode returns, still inside the
	// worker's single pass over this item (§4.4 step 4). Returns
	// false to mark the item failed even if Decode succeeded.
	Postprocess func() bool

	status atomic.Int32
}

// NewPictureDecoder returns a handle in the Processing state.
func NewPictureDecoder(decode func([]byte, int, *pic.SegmentHeader, *pic.SegmentHeader) bool, postprocess func() bool) *PictureDecoder {
	return &PictureDecoder{Decode: decode, Postprocess: postprocess}
}

// Status reports the picture's current lifecycle phase.
func (d *PictureDecoder) Status() OutputStatus {
	return OutputStatus(d.status.Load())
}

func (d *PictureDecoder) setStatus(s OutputStatus) {
	d.status.Store(int32(s))
}

// MarkOutput transitions the picture to HasNotBeenOutput. The host calls
// this from inside a WaitOne/WaitAll/WaitForPicture callback once it has
// consumed the decoded picture (§3); no other path makes this
// transition.
func (d *PictureDecoder) MarkOutput() {
	d.setStatus(HasNotBeenOutput)
}

// WorkItem is the unit of decoder parallelism (§4.4): a picture's raw
// NAL bytes plus the segment headers needed to decode it, the
// PictureDecoder that will hold the result, and the set of pictures
// (not work items — pictures already queued or already finished) this
// one depends on, typically temporal references.
type WorkItem struct {
	Header     *pic.SegmentHeader
	PrevHeader *pic.SegmentHeader
	Decoder    *PictureDecoder

	// Dependencies lists the pictures this item's Decode call will
	// read from. A dependency with Status() == Processing is not
	// safe to read yet; every other status is (§8 property 10).
	Dependencies []*PictureDecoder

	NAL    []byte
	Offset int

	// Success is set once the item has run to FinishedProcessing.
	Success bool
}

func (w *WorkItem) runnable() bool {
	for _, dep := range w.Dependencies {
		if dep.Status() == Processing {
			return false
		}
	}
	return true
}
