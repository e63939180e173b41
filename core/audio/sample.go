package audio

import "math"

// SampleRate is the fixed output rate of the MusicGen family of models.
const SampleRate = 32000

// Sample is a single-channel waveform at SampleRate.
// It is produced by the generation adapter, mutated in place by the
// post-processing helpers and discarded after serialization.
type Sample struct {
	Data []float32
}

// NewSample wraps raw amplitude values in a Sample.
func NewSample(data []float32) *Sample {
	return &Sample{Data: data}
}

// Duration returns the playing time of the sample in seconds.
func (s *Sample) Duration() float64 {
	return float64(len(s.Data)) / float64(SampleRate)
}

// Peak returns the maximum absolute amplitude.
func (s *Sample) Peak() float32 {
	var peak float32
	for _, v := range s.Data {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}
	return peak
}

// ApplyFades applies a linear fade-in over the first fadeIn seconds and a
// linear fade-out over the last fadeOut seconds. Each ramp is skipped when
// the sample is shorter than its window. The sample is mutated in place and
// returned for chaining.
func ApplyFades(s *Sample, fadeIn, fadeOut float64) *Sample {
	fadeInSamples := int(fadeIn * SampleRate)
	fadeOutSamples := int(fadeOut * SampleRate)

	if fadeInSamples > 0 && len(s.Data) > fadeInSamples {
		for i := 0; i < fadeInSamples; i++ {
			s.Data[i] *= float32(i) / float32(fadeInSamples)
		}
	}

	if fadeOutSamples > 0 && len(s.Data) > fadeOutSamples {
		start := len(s.Data) - fadeOutSamples
		for i := 0; i < fadeOutSamples; i++ {
			s.Data[start+i] *= float32(fadeOutSamples-i) / float32(fadeOutSamples)
		}
	}

	return s
}

// AdjustVolume scales every amplitude by factor. No clipping or limiting is
// performed; keeping the result inside [-1, 1] is the caller's concern.
func AdjustVolume(s *Sample, factor float64) *Sample {
	if factor == 1.0 {
		return s
	}
	f := float32(factor)
	for i := range s.Data {
		s.Data[i] *= f
	}
	return s
}

// Summary describes a sample for display alongside the player.
type Summary struct {
	Duration      float64 `json:"duration"`
	SampleRate    int     `json:"sample_rate"`
	PeakAmplitude float64 `json:"peak_amplitude"`
	Samples       int     `json:"samples"`
}

// Summarize computes the summary stats of a sample.
func Summarize(s *Sample) Summary {
	return Summary{
		Duration:      math.Round(s.Duration()*100) / 100,
		SampleRate:    SampleRate,
		PeakAmplitude: math.Round(float64(s.Peak())*1000) / 1000,
		Samples:       len(s.Data),
	}
}
