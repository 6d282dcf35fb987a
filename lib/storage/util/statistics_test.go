package util

import (
	"math"
	"sync"
	"testing"
)

func TestNewStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{"empty", nil, Stats{}},
		{"single", []float64{4}, Stats{Min: 4, Max: 4, Mean: 4, MinMaxRatio: 1}},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, Stats{StdDeviation: 2, Min: 2, Max: 9, Mean: 5, MinMaxRatio: 2.0 / 9.0}},
		{"zeros", []float64{0, 0}, Stats{MinMaxRatio: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewStats(tt.values)
			if math.Abs(got.StdDeviation-tt.want.StdDeviation) > 1e-9 ||
				got.Min != tt.want.Min || got.Max != tt.want.Max ||
				got.Mean != tt.want.Mean || math.Abs(got.MinMaxRatio-tt.want.MinMaxRatio) > 1e-9 {
				t.Errorf("NewStats(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestDistributionQuality(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1 {
		t.Errorf("Expected quality 1 for even distribution, got %f", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("Expected skewed quality (%f) to be below even quality (%f)",
			skewed.DistributionQuality, even.DistributionQuality)
	}
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()

	if h.MedianEstimate() != 0 || h.AverageSize() != 0 {
		t.Fatal("Expected empty histogram to report 0")
	}

	for i := 0; i < 90; i++ {
		h.AddSample(10) // first bucket
	}
	for i := 0; i < 10; i++ {
		h.AddSample(2000) // (1KB, 4KB]
	}

	if h.Count() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.Count())
	}
	if got := h.AverageSize(); got != (90*10+10*2000)/100 {
		t.Errorf("Unexpected average size %d", got)
	}
	if got := h.MedianEstimate(); got != 8 {
		t.Errorf("Expected median estimate 8, got %d", got)
	}
	if got := h.Percentile(99); got != (1024+4096)/2 {
		t.Errorf("Expected p99 estimate %d, got %d", (1024+4096)/2, got)
	}
	if got := h.Percentile(101); got != 0 {
		t.Errorf("Expected 0 for invalid percentile, got %d", got)
	}

	_, shares := h.Distribution()
	if shares[0] != 90 || shares[4] != 10 {
		t.Errorf("Unexpected distribution %v", shares)
	}

	h.AddSample(8 << 30)
	if got := h.Percentile(100); got != 8<<30 {
		t.Errorf("Expected overflow bucket estimate %d, got %d", 8<<30, got)
	}

	h.Reset()
	if h.Count() != 0 {
		t.Errorf("Expected empty histogram after reset, got %d samples", h.Count())
	}
}

func TestSizeHistogramConcurrent(t *testing.T) {
	h := NewSizeHistogram()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h.AddSample(i)
			}
		}()
	}
	wg.Wait()

	if h.Count() != 8000 {
		t.Errorf("Expected 8000 samples, got %d", h.Count())
	}
}
