package provider

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWAV builds a minimal mono 16-bit WAV around pcm.
func testWAV(rate int, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func TestStripWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}

	data, rate, err := StripWAVHeader(testWAV(24000, pcm), SampleRate)
	require.NoError(t, err)
	assert.Equal(t, pcm, data)
	assert.Equal(t, 24000, rate)
}

func TestStripWAVHeader_RawPassthrough(t *testing.T) {
	raw := []byte{9, 9, 9, 9}

	data, rate, err := StripWAVHeader(raw, SampleRate)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, SampleRate, rate)
}

func TestStripWAVHeader_Malformed(t *testing.T) {
	wav := testWAV(SampleRate, []byte{1, 2})

	tests := []struct {
		name string
		in   []byte
	}{
		{"no data chunk", wav[:36]},
		{"truncated fmt", wav[:24]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := StripWAVHeader(tt.in, SampleRate)
			assert.Error(t, err)
		})
	}
}

func TestStripWAVHeader_Stereo(t *testing.T) {
	wav := testWAV(SampleRate, []byte{1, 2})
	binary.LittleEndian.PutUint16(wav[22:24], 2)

	_, _, err := StripWAVHeader(wav, SampleRate)
	assert.ErrorContains(t, err, "unsupported wav layout")
}
