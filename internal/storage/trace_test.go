package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/san-kum/fieldsim/internal/sim"
)

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)

	pool := []sim.Particle{
		{X: 1.5, Y: 2, VX: 0.25, VY: -0.25},
		{X: 10, Y: 20},
	}
	tw.OnTick(sim.FrameStats{Tick: 1}, pool)
	tw.OnTick(sim.FrameStats{Tick: 2}, pool[:1])
	if err := tw.Flush(); err != nil {
		t.Fatal(err)
	}
	if tw.Rows() != 3 {
		t.Errorf("rows = %d, want 3", tw.Rows())
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	want := []string{"1", "0", "1.5", "2", "0.25", "-0.25"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row 1 = %v, want %v", records[1], want)
			break
		}
	}
	if records[3][0] != "2" || records[3][1] != "0" {
		t.Errorf("last row = %v", records[3])
	}
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestTraceWriterKeepsFirstError(t *testing.T) {
	tw := NewTraceWriter(failingWriter{})
	tw.OnTick(sim.FrameStats{Tick: 1}, []sim.Particle{{}})
	if err := tw.Flush(); !errors.Is(err, errDiskFull) {
		t.Errorf("expected the write error, got %v", err)
	}
}
