package decode

import (
	"log/slog"
	"sync"
)

// PoolStats is a point-in-time snapshot of Pool activity (a
// supplemented feature over the distilled spec: the host API names
// WaitOne/WaitAll/WaitForPicture but nothing to introspect queue health
// with, which any production worker pool needs).
type PoolStats struct {
	Submitted    uint64
	Completed    uint64
	Failed       uint64
	PendingDepth int
	FinishedDepth int
}

// PoolOption configures a Pool at construction.
type PoolOption func(*Pool)

// WithLogger attaches a structured logger. Nil disables logging, the
// default.
func WithLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) { p.logger = logger }
}

// Pool is the dependency-aware decoder worker pool (§4.4, §5): a fixed
// set of goroutines pulling from a shared FIFO of pending WorkItems,
// skipping over any item whose dependencies have not yet left the
// Processing state, and depositing completed items on a second FIFO a
// single host thread drains through WaitOne/WaitAll/WaitForPicture.
//
// Grounded on internal/lossy/encode_parallel.go's rowSync: one mutex
// guards both FIFOs and the in-flight counter, and two condition
// variables split "a worker should look for more work" from "the host
// should look for a finished item" exactly the way rowSync splits
// waitFor from signal, adapted from a single monotonic counter to an
// arbitrary dependency DAG.
type Pool struct {
	mu       sync.Mutex
	waitWork sync.Cond // workers block here when nothing runnable is pending
	workDone sync.Cond // the host blocks here when nothing is finished

	pending  []*WorkItem
	finished []*WorkItem

	jobsInFlight int
	running      bool
	wg           sync.WaitGroup

	stats PoolStats

	logger *slog.Logger
}

// NewPool starts numWorkers worker goroutines and returns the pool
// ready to accept work. numWorkers < 1 is treated as 1.
func NewPool(numWorkers int, opts ...PoolOption) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &Pool{running: true}
	p.waitWork.L = &p.mu
	p.workDone.L = &p.mu
	for _, opt := range opts {
		opt(p)
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.workerLoop(i)
	}
	return p
}

// DecodeAsync enqueues item for decoding and returns immediately. item
// may become runnable only once every entry in its Dependencies has
// left the Processing state.
func (p *Pool) DecodeAsync(item *WorkItem) {
	p.mu.Lock()
	p.pending = append(p.pending, item)
	p.jobsInFlight++
	p.stats.Submitted++
	p.mu.Unlock()
	p.waitWork.Signal()
}

// workerLoop is the body run by every pool goroutine (§4.4 steps 1-7):
// scan the pending FIFO for the first runnable item, skipping blocked
// ones, decode it, postprocess it, then hand the result to the finished
// FIFO and wake the host.
func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()

	var lastSOC int64 = -1
	var sawSOC bool

	for {
		p.mu.Lock()
		var item *WorkItem
		var idx int
		for {
			if !p.running {
				p.mu.Unlock()
				return
			}
			idx, item = p.findRunnableLocked()
			if item != nil {
				p.pending = append(p.pending[:idx], p.pending[idx+1:]...)
				break
			}
			p.waitWork.Wait()
		}
		p.mu.Unlock()

		// §4.4 step 1: the worker records the SOC of the last segment
		// it processed. No Restrictions snapshot is cached here; each
		// item's Restrictions reach Decode through item.Header.
		if !sawSOC || item.Header.SOC != lastSOC {
			lastSOC = item.Header.SOC
			sawSOC = true
		}

		if p.logger != nil {
			p.logger.Debug("decode worker running item", "worker", id, "soc", item.Header.SOC)
		}

		ok := item.Decoder.Decode(item.NAL, item.Offset, item.Header, item.PrevHeader)
		item.Decoder.setStatus(PostProcessing)

		// Dependents blocked on this item's Processing state may now
		// be runnable; wake every worker so they rescan.
		p.waitWork.Broadcast()

		if item.Decoder.Postprocess != nil {
			ok = item.Decoder.Postprocess() && ok
		}
		item.Decoder.setStatus(FinishedProcessing)
		item.Success = ok

		p.mu.Lock()
		p.finished = append(p.finished, item)
		p.jobsInFlight--
		if ok {
			p.stats.Completed++
		} else {
			p.stats.Failed++
		}
		p.mu.Unlock()
		p.workDone.Broadcast()
	}
}

// findRunnableLocked scans pending FIFO-with-skip: the first item whose
// every dependency has left Processing wins, even if earlier items in
// the queue are still blocked (§4.4 step 2, §8 scenario S4).
func (p *Pool) findRunnableLocked() (int, *WorkItem) {
	for i, item := range p.pending {
		if item.runnable() {
			return i, item
		}
	}
	return -1, nil
}

// WaitOne blocks until one item has finished, removes it from the
// finished FIFO, and invokes callback with Pool's mutex held — the same
// callback-under-lock contract as WaitAll and WaitForPicture, so the
// callback may safely call item.Decoder.MarkOutput without racing a
// worker depositing the next finished item.
//
// Returns false if the pool has no finished item and never will (no
// jobs in flight and the pool has been stopped).
func (p *Pool) WaitOne(callback func(*WorkItem)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.finished) == 0 {
		if !p.running {
			return false
		}
		p.workDone.Wait()
	}
	item := p.finished[0]
	p.finished = p.finished[1:]
	if callback != nil {
		callback(item)
	}
	return true
}

// WaitAll drains every currently in-flight item, invoking callback for
// each as it finishes.
func (p *Pool) WaitAll(callback func(*WorkItem)) {
	for {
		p.mu.Lock()
		inFlight := p.jobsInFlight + len(p.finished)
		p.mu.Unlock()
		if inFlight == 0 {
			return
		}
		if !p.WaitOne(callback) {
			return
		}
	}
}

// WaitForPicture blocks, draining finished items through callback, until
// target has reached HasNotBeenOutput. That terminal transition happens
// inside callback (via PictureDecoder.MarkOutput), so a caller that
// never marks its own target output would block here forever — by
// design, the same contract WaitOne documents.
func (p *Pool) WaitForPicture(target *PictureDecoder, callback func(*WorkItem)) {
	for target.Status() != HasNotBeenOutput {
		if !p.WaitOne(callback) {
			return
		}
	}
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.PendingDepth = len(p.pending)
	s.FinishedDepth = len(p.finished)
	return s
}

// StopAll signals every worker to exit once it next looks for work, and
// blocks until all have exited. Items still pending when StopAll is
// called are dropped; already-finished items remain in the finished
// FIFO for a final WaitOne/WaitAll drain.
func (p *Pool) StopAll() {
	p.mu.Lock()
	p.running = false
	p.jobsInFlight -= len(p.pending)
	p.pending = nil
	p.mu.Unlock()
	p.waitWork.Broadcast()
	p.workDone.Broadcast()
	p.wg.Wait()
}
