// Package codec converts between the provider's audio transport encodings and
// playable audio: base64 <-> raw bytes, little-endian PCM16 <-> normalized
// float samples, and float samples -> a self-contained RIFF/WAVE container.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"flowforge/internal/logging"
)

// ErrInvalidEncoding reports malformed base64 transport input.
var ErrInvalidEncoding = errors.New("invalid base64 encoding")

// SampleBuffer holds decoded audio as planar float samples in [-1.0, 1.0],
// one contiguous slice per channel. Not mutated after creation.
type SampleBuffer struct {
	SampleRate int
	Channels   int
	FrameCount int
	Samples    [][]float64
}

// DecodeBase64 decodes standard-alphabet base64 into raw bytes.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return data, nil
}

// PCM16ToSamples interprets data as interleaved little-endian signed 16-bit
// PCM and de-interleaves it into a planar SampleBuffer. Each integer v is
// normalized to v/32768.0. Trailing bytes that do not fill a whole frame are
// dropped; the caller sees the truncation only in the frame count.
func PCM16ToSamples(data []byte, sampleRate, channels int) (*SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("channel count must be at least 1, got %d", channels)
	}

	frameSize := 2 * channels
	frameCount := len(data) / frameSize
	if rem := len(data) % frameSize; rem != 0 {
		logging.CodecDebug("PCM16ToSamples: dropping %d trailing bytes (frame size %d)", rem, frameSize)
	}

	samples := make([][]float64, channels)
	for c := range samples {
		samples[c] = make([]float64, frameCount)
	}
	for f := 0; f < frameCount; f++ {
		base := f * frameSize
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(data[base+2*c:]))
			samples[c][f] = float64(v) / 32768.0
		}
	}

	return &SampleBuffer{
		SampleRate: sampleRate,
		Channels:   channels,
		FrameCount: frameCount,
		Samples:    samples,
	}, nil
}

// SamplesToWAV encodes channel 0 of the buffer as a mono 16-bit PCM WAV file
// with the canonical 44-byte RIFF header. Samples are clamped to [-1.0, 1.0]
// and scaled asymmetrically (x32768 when negative, x32767 otherwise) so the
// full signed 16-bit range is reachable.
func SamplesToWAV(buf *SampleBuffer) []byte {
	const (
		headerSize    = 44
		channels      = 1 // mono output only in the current feature scope
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	dataSize := buf.FrameCount * blockAlign
	byteRate := buf.SampleRate * blockAlign

	out := make([]byte, headerSize+dataSize)
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataSize))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM format code
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(buf.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	for f := 0; f < buf.FrameCount; f++ {
		s := buf.Samples[0][f]
		if s < -1.0 {
			s = -1.0
		} else if s > 1.0 {
			s = 1.0
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[headerSize+2*f:], uint16(v))
	}

	return out
}
