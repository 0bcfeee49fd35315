package voice

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// PlaybackRate is the sample rate every waveform is played at.
const PlaybackRate = 22050

// Waveform is mono 16-bit audio.
type Waveform struct {
	Samples    []int16
	SampleRate int
}

// FromPCM decodes signed 16-bit little-endian mono bytes.
func FromPCM(data []byte, rate int) *Waveform {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return &Waveform{Samples: samples, SampleRate: rate}
}

// Duration in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Resample converts to the target rate by linear interpolation.
func (w *Waveform) Resample(rate int) *Waveform {
	if w.SampleRate == rate || w.SampleRate == 0 || len(w.Samples) == 0 {
		return &Waveform{Samples: w.Samples, SampleRate: rate}
	}

	n := int(int64(len(w.Samples)) * int64(rate) / int64(w.SampleRate))
	out := make([]int16, n)
	step := float64(w.SampleRate) / float64(rate)
	last := len(w.Samples) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = w.Samples[last]
			continue
		}
		frac := pos - float64(j)
		v := float64(w.Samples[j])*(1-frac) + float64(w.Samples[j+1])*frac
		out[i] = int16(math.Round(v))
	}
	return &Waveform{Samples: out, SampleRate: rate}
}

// RMS returns the root mean square amplitude normalized to [0, 1].
func (w *Waveform) RMS() float64 {
	if len(w.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.Samples {
		f := float64(s) / math.MaxInt16
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(w.Samples)))
}

// EncodeWAV writes the waveform as a PCM WAV file.
func (w *Waveform) EncodeWAV(out io.Writer) error {
	dataLen := uint32(len(w.Samples) * 2)
	header := []interface{}{
		[4]byte{'R', 'I', 'F', 'F'},
		36 + dataLen,
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(1), // mono
		uint32(w.SampleRate),
		uint32(w.SampleRate * 2),
		uint16(2),
		uint16(16),
		[4]byte{'d', 'a', 't', 'a'},
		dataLen,
	}
	for _, v := range header {
		if err := binary.Write(out, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write wav header: %w", err)
		}
	}
	if err := binary.Write(out, binary.LittleEndian, w.Samples); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	return nil
}

// DecodeWAV reads a mono 16-bit PCM WAV file.
func DecodeWAV(data []byte) (*Waveform, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, errors.New("not a wav file")
	}

	rate := 0
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return nil, errors.New("truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels := binary.LittleEndian.Uint16(data[body+2 : body+4])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || channels != 1 || bits != 16 {
				return nil, fmt.Errorf("unsupported wav: format %d, %d channels, %d bits", format, channels, bits)
			}
			rate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
		case "data":
			if rate == 0 {
				return nil, errors.New("data chunk before fmt chunk")
			}
			end := body + size
			if end > len(data) {
				end = len(data)
			}
			return FromPCM(data[body:end], rate), nil
		}
		pos = body + size + size%2
	}
	return nil, errors.New("wav has no data chunk")
}
