// SPDX-License-Identifier: MIT
package vocoder

import (
	"errors"
	"sync/atomic"

	"vocoder/internal/control"
	"vocoder/internal/dsp"
	"vocoder/internal/fabric"
	"vocoder/internal/log"
)

// Stats counts loop events. All fields are updated atomically.
type Stats struct {
	Cycles       atomic.Uint64
	OutputDrops  atomic.Uint64 // output hops the callback did not take in time
	VisualDrops  atomic.Uint64 // snapshots evicted before the UI read them
	SilentCycles atomic.Uint64 // cycles with output disabled
}

// Loop drives a Pipeline from the duplex fabric. Run owns the pipeline.
type Loop struct {
	pipeline  *Pipeline
	duplex    *fabric.Duplex
	visual    *fabric.Lossy[dsp.Spectrum]
	snapshots *fabric.Pool[dsp.Spectrum]
	control   *control.State
	stats     Stats
}

// NewLoop connects pipeline to the fabric. visual and snapshots may be nil
// when nothing consumes spectra.
func NewLoop(
	pipeline *Pipeline,
	duplex *fabric.Duplex,
	visual *fabric.Lossy[dsp.Spectrum],
	snapshots *fabric.Pool[dsp.Spectrum],
	ctl *control.State,
) *Loop {
	return &Loop{
		pipeline:  pipeline,
		duplex:    duplex,
		visual:    visual,
		snapshots: snapshots,
		control:   ctl,
	}
}

// NewSnapshotPool returns a pool of spectra sized for the visual channel.
func NewSnapshotPool(capacity, size int) *fabric.Pool[dsp.Spectrum] {
	return fabric.NewPool(capacity+2, func() dsp.Spectrum {
		return dsp.NewSpectrum(size)
	})
}

// Stats returns the loop counters.
func (l *Loop) Stats() *Stats {
	return &l.stats
}

// Run processes hops until exit is requested or the fabric is closed. The
// wait for input is unbounded; closing the fabric is what unblocks it at
// shutdown.
func (l *Loop) Run() error {
	log.Debugf("processing loop: started, hop=%d window=%d", l.pipeline.Hop(), l.pipeline.Size())
	defer log.Debugf("processing loop: stopped after %d cycles", l.stats.Cycles.Load())

	for !l.control.Exiting() {
		in, err := l.duplex.In.PopWait()
		if err != nil {
			if errors.Is(err, fabric.ErrClosed) {
				return nil
			}
			return err
		}

		out := l.duplex.Chunks.Get()
		l.pipeline.Process(in, l.control.EffectiveRatio(), out)
		l.duplex.Chunks.Put(in)
		l.stats.Cycles.Add(1)

		if !l.control.OutputEnabled() {
			clear(out)
			l.stats.SilentCycles.Add(1)
		}

		l.publish()

		if err := l.duplex.Out.Push(out); err != nil {
			l.duplex.Chunks.Put(out)
			if errors.Is(err, fabric.ErrClosed) {
				return nil
			}
			// Drop this hop; the callback has already played silence.
			l.stats.OutputDrops.Add(1)
		}
	}
	return nil
}

// publish sends a copy of this cycle's raw spectrum to the visualization.
func (l *Loop) publish() {
	if l.visual == nil || l.snapshots == nil {
		return
	}
	snap := l.snapshots.Get()
	snap.CopyFrom(l.pipeline.RawSpectrum())
	if evicted, dropped := l.visual.TryPush(snap); dropped {
		l.snapshots.Put(evicted)
		l.stats.VisualDrops.Add(1)
	}
}
