package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps raw S16LE mono PCM in a RIFF/WAVE container suitable for
// the pronunciation scorer and the utterance archive.
func EncodeWAV(pcm []byte) []byte {
	dataSize := uint32(len(pcm))
	fileSize := 36 + dataSize

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, fileSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))                                // chunk size
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))                                 // PCM format
	_ = binary.Write(&buf, binary.LittleEndian, uint16(Channels))                          // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))                        // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate*Channels*BytesPerSample)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(Channels*BytesPerSample))           // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))                                // bits per sample

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)

	return buf.Bytes()
}

// PCMDuration returns the play length in milliseconds of S16LE mono PCM.
func PCMDuration(pcm []byte) int64 {
	samples := len(pcm) / BytesPerSample
	return int64(samples) * 1000 / SampleRate
}
