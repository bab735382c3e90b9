package tts

import (
	"encoding/binary"
	"os"
	"time"
)

const (
	sampleRate    = 16000
	bitsPerSample = 16
	numChannels   = 1
)

// WriteSilentWAV writes a valid 16kHz mono 16-bit PCM RIFF/WAVE file of
// duration, with every sample zeroed. This is the last-resort audio path
// when neither a premium TTS key nor a SAPI-equivalent fallback is
// available: the timing model upstream is authoritative regardless, so a
// silent track is a legitimate placeholder, not a degraded result.
//
// No library in the available stack emits a raw PCM WAV container, so this
// writes the 44-byte RIFF header by hand.
func WriteSilentWAV(path string, duration time.Duration) error {
	numSamples := int(duration.Seconds() * float64(sampleRate))
	if numSamples < 0 {
		numSamples = 0
	}
	dataSize := numSamples * numChannels * (bitsPerSample / 8)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	byteRate := sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return err
	}

	zero := make([]byte, 4096)
	remaining := dataSize
	for remaining > 0 {
		n := len(zero)
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(zero[:n]); err != nil {
			return err
		}
		remaining -= n
	}

	return nil
}
