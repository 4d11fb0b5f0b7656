package storage

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/fieldsim/internal/sim"
)

var traceHeader = []string{"tick", "index", "x", "y", "vx", "vy"}

// TraceWriter is a sim.Observer that writes one CSV row per particle per
// tick. The first write error sticks and stops further output.
type TraceWriter struct {
	w    *csv.Writer
	err  error
	rows int
	rec  []string
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	t := &TraceWriter{w: csv.NewWriter(w), rec: make([]string, len(traceHeader))}
	t.err = t.w.Write(traceHeader)
	return t
}

func (t *TraceWriter) OnTick(stats sim.FrameStats, pool []sim.Particle) {
	if t.err != nil {
		return
	}
	tick := strconv.Itoa(stats.Tick)
	for i := range pool {
		p := &pool[i]
		t.rec[0] = tick
		t.rec[1] = strconv.Itoa(i)
		t.rec[2] = strconv.FormatFloat(p.X, 'f', -1, 64)
		t.rec[3] = strconv.FormatFloat(p.Y, 'f', -1, 64)
		t.rec[4] = strconv.FormatFloat(p.VX, 'f', -1, 64)
		t.rec[5] = strconv.FormatFloat(p.VY, 'f', -1, 64)
		if t.err = t.w.Write(t.rec); t.err != nil {
			return
		}
		t.rows++
	}
}

// Rows is the number of particle rows written, excluding the header.
func (t *TraceWriter) Rows() int { return t.rows }

// Flush writes any buffered rows and reports the first error seen.
func (t *TraceWriter) Flush() error {
	if t.err != nil {
		return t.err
	}
	t.w.Flush()
	return t.w.Error()
}
