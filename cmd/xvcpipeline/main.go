// Command xvcpipeline drives the two subsystems this module implements
// against synthetic data, for inspection and benchmarking rather than
// for producing a real bitstream (no NAL/container format is part of
// this module; see the package docs on rdo and decode).
//
// Usage:
//
//	xvcpipeline rdo [options]      Run the CTU RDO search over a synthetic picture
//	xvcpipeline decode [options]   Run a synthetic picture chain through the decoder pool
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xvc-go/xvccore/checksum"
	"github.com/xvc-go/xvccore/cucache"
	"github.com/xvc-go/xvccore/decode"
	"github.com/xvc-go/xvccore/pic"
	"github.com/xvc-go/xvccore/rdo"
	"github.com/xvc-go/xvccore/search"
	"github.com/xvc-go/xvccore/syntax"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "rdo":
		err = runRdo(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "xvcpipeline: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "xvcpipeline: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  xvcpipeline rdo [options]      Run the CTU RDO search over a synthetic picture
  xvcpipeline decode [options]   Run a synthetic picture chain through the decoder pool

Run "xvcpipeline <command> -h" for command-specific options.
`)
}

// --- rdo ---

func runRdo(args []string) error {
	fs := flag.NewFlagSet("rdo", flag.ContinueOnError)
	width := fs.Int("width", 64, "picture width in samples (must be a multiple of -ctu)")
	height := fs.Int("height", 64, "picture height in samples (must be a multiple of -ctu)")
	ctuSize := fs.Int("ctu", 32, "CTU size in samples")
	qp := fs.Int("qp", 32, "quantization parameter (all components)")
	maxDepth := fs.Int("max-depth", 4, "maximum quadtree depth below a CTU")
	intra := fs.Bool("intra", true, "encode as an intra picture (false runs the inter-leaf mode menu)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *width%*ctuSize != 0 || *height%*ctuSize != 0 {
		return fmt.Errorf("rdo: -width and -height must be multiples of -ctu")
	}

	header := &pic.SegmentHeader{ChromaFormat: pic.ChromaMonochrome, BitDepth: 8, MaxDepth: [2]int{*maxDepth, *maxDepth}}
	picQP := pic.NewQP([pic.MaxComponents]int{*qp, *qp, *qp}, header.BitDepth)

	recon := pic.NewPictureData(*width, *height, *ctuSize, header, *intra, true, picQP, false)
	src := pic.NewPictureData(*width, *height, *ctuSize, header, *intra, true, picQP, false)
	fillSyntheticGradient(src)

	var ref *pic.PictureData
	if !*intra {
		ref = pic.NewPictureData(*width, *height, *ctuSize, header, true, true, picQP, false)
		fillSyntheticGradient(ref)
	}

	enc := rdo.NewCuEncoder(
		rdo.NewEncoderSettings(),
		search.ReferenceIntraSearcher{},
		search.ReferenceInterSearcher{},
		rdo.NewTransformEncoder(search.ReferenceTransform{}, search.ReferenceQuantizer{}),
		cucache.New(),
	)
	enc.Ref = ref

	ctuCols, ctuRows := *width / *ctuSize, *height / *ctuSize
	var totalDist rdo.Distortion
	var totalBits uint32

	for row := 0; row < ctuRows; row++ {
		for col := 0; col < ctuCols; col++ {
			x, y := col*(*ctuSize), row*(*ctuSize)
			cu := recon.CreateCu(pic.PrimaryTree, x, y, *ctuSize, *ctuSize)
			d, bits := enc.CompressCu(cu, 0, pic.SplitRestriction{}, recon, src, picQP)
			recon.SetCtu(row*ctuCols+col, cu)
			totalDist += d
			totalBits += bits
		}
	}

	wholeBits := totalBits >> syntax.BitPrecisionShift
	sum := checksum.Compute(recon, checksum.CRC32)
	fmt.Printf("CTUs:        %d (%dx%d grid)\n", ctuCols*ctuRows, ctuCols, ctuRows)
	fmt.Printf("Distortion:  %d\n", totalDist)
	fmt.Printf("Bits:        %d\n", wholeBits)
	fmt.Printf("Cost:        %d\n", rdo.Cost(totalDist, totalBits, picQP.Lambda))
	fmt.Printf("Checksum:    %s %x\n", sum.Algorithm, sum.Digest)
	return nil
}

// fillSyntheticGradient writes the diagonal ramp (x+y) mod 256 into p's
// luma plane. The ramp has a sharp wraparound seam only where x+y reaches
// 256, which needs width+height of at least 258; smaller pictures,
// including the 64x64 default, get a smooth ramp with no seam.
func fillSyntheticGradient(p *pic.PictureData) {
	w, h := p.ComponentSize(pic.Luma)
	buf := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf[y*w+x] = uint16((x + y) % 256)
		}
	}
	p.WriteSamples(pic.Luma, 0, 0, w, h, buf)
}

// --- decode ---

type pictureJob struct {
	idx      int
	picture  *pic.PictureData
	checksum checksum.Checksum
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	numPictures := fs.Int("n", 8, "number of pictures to decode")
	numWorkers := fs.Int("workers", 4, "worker goroutine count")
	width := fs.Int("width", 32, "picture width in samples")
	height := fs.Int("height", 32, "picture height in samples")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *numPictures < 1 {
		return fmt.Errorf("decode: -n must be at least 1")
	}

	header := &pic.SegmentHeader{ChromaFormat: pic.ChromaMonochrome, BitDepth: 8, MaxDepth: [2]int{1, 1}}
	qp := pic.NewQP([pic.MaxComponents]int{32, 32, 32}, header.BitDepth)

	jobs := make([]*pictureJob, *numPictures)
	decoders := make([]*decode.PictureDecoder, *numPictures)

	pool := decode.NewPool(*numWorkers)
	defer pool.StopAll()

	for i := 0; i < *numPictures; i++ {
		job := &pictureJob{idx: i, picture: pic.NewPictureData(*width, *height, *width, header, i == 0, false, qp, false)}
		jobs[i] = job

		capturedJob := job
		pd := decode.NewPictureDecoder(
			func(nal []byte, offset int, hdr, prevHdr *pic.SegmentHeader) bool {
				fillFromNAL(capturedJob.picture, nal, offset)
				return true
			},
			func() bool {
				capturedJob.checksum = checksum.Compute(capturedJob.picture, checksum.CRC32)
				return true
			},
		)
		decoders[i] = pd

		var deps []*decode.PictureDecoder
		if i > 0 {
			// A picture depends on its immediate temporal predecessor,
			// the simplest non-trivial dependency DAG (§4.4 step 2).
			deps = []*decode.PictureDecoder{decoders[i-1]}
		}

		item := &decode.WorkItem{
			Header:       header,
			Decoder:      pd,
			Dependencies: deps,
			NAL:          []byte{byte(i), byte(i * 7), byte(i * 13)},
		}
		if i > 0 {
			item.PrevHeader = header
		}
		pool.DecodeAsync(item)
	}

	start := time.Now()
	completed := 0
	pool.WaitAll(func(item *decode.WorkItem) {
		completed++
		item.Decoder.MarkOutput()
	})
	elapsed := time.Since(start)

	stats := pool.Stats()
	fmt.Printf("Pictures:    %d\n", *numPictures)
	fmt.Printf("Workers:     %d\n", *numWorkers)
	fmt.Printf("Completed:   %d\n", completed)
	fmt.Printf("Failed:      %d\n", stats.Failed)
	fmt.Printf("Elapsed:     %s\n", elapsed)
	for _, job := range jobs {
		fmt.Printf("  picture %d: %s %x\n", job.idx, job.checksum.Algorithm, job.checksum.Digest)
	}
	return nil
}

// fillFromNAL derives a deterministic picture from a handful of NAL
// bytes in place of real entropy decoding (out of scope for this
// module, §1) — enough to give each synthetic picture distinct, but
// reproducible, sample content.
func fillFromNAL(p *pic.PictureData, nal []byte, offset int) {
	w, h := p.ComponentSize(pic.Luma)
	var seed uint16
	for _, b := range nal[offset:] {
		seed += uint16(b)
	}
	buf := make([]uint16, w*h)
	for i := range buf {
		buf[i] = (seed + uint16(i)) % 256
	}
	p.WriteSamples(pic.Luma, 0, 0, w, h, buf)
}
