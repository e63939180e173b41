package audio

import (
	"path/filepath"
	"testing"
)

func TestConvertToMP3MissingBinaryReportsFalse(t *testing.T) {
	p := NewFFmpegProcessor(filepath.Join(t.TempDir(), "ffmpeg"))

	dir := t.TempDir()
	wavPath := filepath.Join(dir, "in.wav")
	if err := WriteWAV(sineSample(0.5, 0.5), wavPath); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	if p.ConvertToMP3(wavPath, filepath.Join(dir, "out.mp3")) {
		t.Error("ConvertToMP3 reported success with a missing ffmpeg binary")
	}
}

func TestDurationMissingBinaryFails(t *testing.T) {
	p := NewFFmpegProcessor(filepath.Join(t.TempDir(), "ffmpeg"))

	if _, err := p.Duration("whatever.wav"); err == nil {
		t.Error("Duration succeeded with a missing ffprobe binary")
	}
}
