package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// wavHeaderSize is the size of a canonical 16-bit PCM header: RIFF descriptor,
// fmt chunk and data chunk header.
const wavHeaderSize = 44

// EncodeWAV serializes a sample as a 16-bit PCM mono WAV file. The waveform
// is peak-normalized before quantization so an over-driven sample cannot
// wrap; an all-silence sample is written as-is instead of dividing by zero.
func EncodeWAV(s *Sample) ([]byte, error) {
	if len(s.Data) == 0 {
		return nil, fmt.Errorf("empty sample")
	}

	scale := float32(1.0)
	if peak := s.Peak(); peak > 0 {
		scale = 1.0 / peak
	}

	dataSize := len(s.Data) * 2
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	// RIFF descriptor
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk: PCM, mono, 16-bit
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(SampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	// data chunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	pcm := make([]byte, dataSize)
	for i, v := range s.Data {
		f := v * scale
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(f*32767)))
	}
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// WriteWAV serializes a sample via EncodeWAV and writes it to path.
func WriteWAV(s *Sample, path string) error {
	data, err := EncodeWAV(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	return nil
}

// DecodeWAV parses a 16-bit PCM mono WAV buffer produced by EncodeWAV and
// returns the waveform plus its sample rate.
func DecodeWAV(data []byte) (*Sample, int, error) {
	if len(data) < wavHeaderSize {
		return nil, 0, fmt.Errorf("wav too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	// Walk chunks to find fmt and data; encoders may interleave others.
	var (
		rate     int
		bits     int
		channels int
		pcm      []byte
	)
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, 0, fmt.Errorf("truncated %s chunk", id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short")
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if rate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	if bits != 16 || channels != 1 {
		return nil, 0, fmt.Errorf("unsupported format: %d-bit %d-channel", bits, channels)
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32767.0
	}
	return NewSample(samples), rate, nil
}
