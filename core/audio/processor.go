package audio

// Converter defines an interface for external-codec operations.
type Converter interface {
	ConvertToMP3(wavPath, mp3Path string) bool
	Duration(path string) (float64, error)
}
