package pic

// ReconstructionState is a snapshot of a CU's working state — prediction
// parameters, residual coefficients, and the reconstructed sample patch
// over the CU's footprint — sufficient to restore the encoder after a
// losing RDO candidate (§3 "Reconstruction state"). rdo.CuEncoder does
// not use this type: it restores losing candidates with its own
// sample-only snapshot (rdo/snapshot.go), because LoadStateFrom always
// turns the CU back into a leaf.
//
// Grounded on deepteams-webp's yuvOut/yuvOut2 double-buffering in
// tryI4ModesRD (encode_frame.go): it keeps exactly one spare sample
// buffer per RD trial and restores it by simply not committing it. This
// recursion needs that restored explicitly and per recursion depth
// (several speculative branches can be in flight across depths at
// once), so ReconstructionState makes the snapshot-and-restore explicit
// rather than implicit in which buffer happens to be live.
type ReconstructionState struct {
	leaf CodingUnit // leaf payload fields only; position/size/tree ignored

	width, height int
	samples       [MaxComponents][]uint16 // one flat plane per component
	compW, compH  [MaxComponents]int
}

// SaveStateTo snapshots cu's leaf payload and the reconstructed samples
// covering cu's footprint (read from pic) into s.
func (s *ReconstructionState) SaveStateTo(cu *CodingUnit, p *PictureData) {
	s.leaf.CopyLeafFrom(cu)
	s.width, s.height = cu.Width, cu.Height

	for c := 0; c < MaxComponents; c++ {
		s.compW[c], s.compH[c] = 0, 0
	}
	for _, c := range p.ComponentsForTree(cu.Tree) {
		cx, cy, cw, ch := p.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		s.compW[c], s.compH[c] = cw, ch
		n := cw * ch
		if cap(s.samples[c]) < n {
			s.samples[c] = make([]uint16, n)
		}
		s.samples[c] = s.samples[c][:n]
		p.ReadSamples(c, cx, cy, cw, ch, s.samples[c])
	}
}

// LoadStateFrom restores cu's leaf payload and writes the snapshotted
// samples back into pic over cu's footprint, undoing a losing candidate's
// effect exactly (§8 testable property 8, the "Restoration property").
func (s *ReconstructionState) LoadStateFrom(cu *CodingUnit, p *PictureData) {
	cu.CopyLeafFrom(&s.leaf)
	for _, c := range p.ComponentsForTree(cu.Tree) {
		if s.compW[c] == 0 || s.compH[c] == 0 {
			continue
		}
		cx, cy, _, _ := p.FootprintFor(cu.Tree, c, cu.X, cu.Y, cu.Width, cu.Height)
		p.WriteSamples(c, cx, cy, s.compW[c], s.compH[c], s.samples[c])
	}
}
