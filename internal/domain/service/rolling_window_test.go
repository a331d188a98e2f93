package service

import (
	"math"
	"testing"
)

func TestRollingWindow_PushEvictsOldestAtCapacity(t *testing.T) {
	w := NewRollingWindow(1000)

	for i := 0; i < 1001; i++ {
		w.Push(float64(i))
	}

	if w.Len() != 1000 {
		t.Fatalf("expected len 1000, got %d", w.Len())
	}

	values := w.Values()
	if values[0] != 1 {
		t.Errorf("expected oldest value 1 after eviction, got %v", values[0])
	}
	if values[len(values)-1] != 1000 {
		t.Errorf("expected newest value 1000, got %v", values[len(values)-1])
	}
}

func TestRollingWindow_ValuesPreservesInsertionOrder(t *testing.T) {
	w := NewRollingWindow(3)

	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}

	got := w.Values()
	want := []float64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRollingWindow_MeanAndStdDev(t *testing.T) {
	w := NewRollingWindow(10)

	// Alternating 45/55: mean 50, population std dev 5.
	for i := 0; i < 5; i++ {
		w.Push(45)
		w.Push(55)
	}

	if mean := w.Mean(); mean != 50 {
		t.Errorf("expected mean 50, got %v", mean)
	}
	if sd := w.StdDev(); math.Abs(sd-5) > 1e-9 {
		t.Errorf("expected std dev 5, got %v", sd)
	}
}

func TestRollingWindow_EmptyWindowStats(t *testing.T) {
	w := NewRollingWindow(10)

	if w.Len() != 0 {
		t.Errorf("expected empty window, got len %d", w.Len())
	}
	if w.Mean() != 0 {
		t.Errorf("expected mean 0 for empty window, got %v", w.Mean())
	}
	if w.StdDev() != 0 {
		t.Errorf("expected std dev 0 for empty window, got %v", w.StdDev())
	}
}

func TestRollingWindow_StdDevZeroForConstantValues(t *testing.T) {
	w := NewRollingWindow(10)

	for i := 0; i < 10; i++ {
		w.Push(42)
	}

	if sd := w.StdDev(); sd != 0 {
		t.Errorf("expected std dev 0 for constant values, got %v", sd)
	}
}
