package audio

import (
	"math"
	"testing"
)

func constantSample(value float32, seconds float64) *Sample {
	data := make([]float32, int(seconds*SampleRate))
	for i := range data {
		data[i] = value
	}
	return NewSample(data)
}

func TestApplyFadesRampEnds(t *testing.T) {
	s := constantSample(0.8, 5)
	ApplyFades(s, 1.0, 2.0)

	if s.Data[0] != 0 {
		t.Errorf("first sample after fade-in = %v, want 0", s.Data[0])
	}
	// Middle of the sample is untouched by either ramp.
	mid := len(s.Data) / 2
	if s.Data[mid] != 0.8 {
		t.Errorf("middle sample = %v, want 0.8", s.Data[mid])
	}
	// The very last sample carries the smallest fade-out gain.
	last := s.Data[len(s.Data)-1]
	if math.Abs(float64(last)) > 0.001 {
		t.Errorf("last sample after fade-out = %v, want ~0", last)
	}
}

func TestApplyFadesMonotonicRamps(t *testing.T) {
	s := constantSample(1.0, 4)
	ApplyFades(s, 1.0, 1.0)

	fadeIn := SampleRate // 1s worth
	for i := 1; i < fadeIn; i++ {
		if s.Data[i] < s.Data[i-1] {
			t.Fatalf("fade-in not monotonic at sample %d: %v < %v", i, s.Data[i], s.Data[i-1])
		}
	}
	start := len(s.Data) - fadeIn
	for i := start + 1; i < len(s.Data); i++ {
		if s.Data[i] > s.Data[i-1] {
			t.Fatalf("fade-out not monotonic at sample %d: %v > %v", i, s.Data[i], s.Data[i-1])
		}
	}
}

func TestApplyFadesShortSampleNoOp(t *testing.T) {
	// Half a second of audio, one second fade windows: both ramps skipped.
	s := constantSample(0.5, 0.5)
	ApplyFades(s, 1.0, 2.0)
	for i, v := range s.Data {
		if v != 0.5 {
			t.Fatalf("sample %d modified to %v, want untouched 0.5", i, v)
		}
	}
}

func TestApplyFadesOnlyFadeOutSkipped(t *testing.T) {
	// 1.5s of audio: 1s fade-in fits, 2s fade-out does not.
	s := constantSample(0.5, 1.5)
	ApplyFades(s, 1.0, 2.0)
	if s.Data[0] != 0 {
		t.Errorf("fade-in not applied: first sample = %v", s.Data[0])
	}
	if got := s.Data[len(s.Data)-1]; got != 0.5 {
		t.Errorf("fade-out should be skipped: last sample = %v, want 0.5", got)
	}
}

func TestAdjustVolumeIdentity(t *testing.T) {
	s := NewSample([]float32{0.1, -0.5, 0.9, -1.0})
	want := []float32{0.1, -0.5, 0.9, -1.0}
	AdjustVolume(s, 1.0)
	for i, v := range s.Data {
		if v != want[i] {
			t.Errorf("AdjustVolume(1.0) changed sample %d: %v -> %v", i, want[i], v)
		}
	}
}

func TestAdjustVolumeScale(t *testing.T) {
	s := NewSample([]float32{0.2, -0.4})
	AdjustVolume(s, 0.5)
	if math.Abs(float64(s.Data[0])-0.1) > 1e-6 || math.Abs(float64(s.Data[1])+0.2) > 1e-6 {
		t.Errorf("AdjustVolume(0.5) = %v, want [0.1 -0.2]", s.Data)
	}
}

func TestAdjustVolumeNoClipping(t *testing.T) {
	s := NewSample([]float32{0.9})
	AdjustVolume(s, 2.0)
	if s.Data[0] != 1.8 {
		t.Errorf("AdjustVolume must not limit: got %v, want 1.8", s.Data[0])
	}
}

func TestSummarize(t *testing.T) {
	s := constantSample(0.25, 2)
	got := Summarize(s)
	if got.Duration != 2.0 {
		t.Errorf("Duration = %v, want 2.0", got.Duration)
	}
	if got.SampleRate != 32000 {
		t.Errorf("SampleRate = %d, want 32000", got.SampleRate)
	}
	if got.PeakAmplitude != 0.25 {
		t.Errorf("PeakAmplitude = %v, want 0.25", got.PeakAmplitude)
	}
	if got.Samples != 64000 {
		t.Errorf("Samples = %d, want 64000", got.Samples)
	}
}
