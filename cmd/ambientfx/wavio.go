package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-ambient/dsp/core"
)

const (
	wavFormatPCM    = 1
	maxWAVChannels  = 2
	bitsPerSample16 = 16
	bitsPerSample24 = 24
)

// audioData is decoded interleaved audio normalized to [-1, 1].
type audioData struct {
	samples    []float64
	channels   int
	sampleRate int
	bitDepth   int
}

func (d *audioData) frames() int {
	if d.channels == 0 {
		return 0
	}
	return len(d.samples) / d.channels
}

// readWAV decodes a PCM WAV file. Channels beyond the first two are dropped.
func readWAV(path string) (*audioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	inChannels := buf.Format.NumChannels
	if inChannels < 1 {
		return nil, fmt.Errorf("%s: no audio channels", path)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = bitsPerSample16
	}

	channels := min(inChannels, maxWAVChannels)
	frames := len(buf.Data) / inChannels
	scale := 1 / math.Exp2(float64(bitDepth-1))

	samples := make([]float64, frames*channels)
	for i := range frames {
		for ch := range channels {
			samples[i*channels+ch] = float64(buf.Data[i*inChannels+ch]) * scale
		}
	}

	return &audioData{
		samples:    samples,
		channels:   channels,
		sampleRate: buf.Format.SampleRate,
		bitDepth:   bitDepth,
	}, nil
}

// writeWAV encodes d as 16- or 24-bit PCM. Samples are hard-clipped to the
// representable range.
func writeWAV(path string, d *audioData) (err error) {
	if d.bitDepth != bitsPerSample16 && d.bitDepth != bitsPerSample24 {
		return fmt.Errorf("unsupported bit depth %d (want 16 or 24)", d.bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	maxVal := math.Exp2(float64(d.bitDepth-1)) - 1
	data := make([]int, len(d.samples))
	for i, v := range d.samples {
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * maxVal))
	}

	enc := wav.NewEncoder(f, d.sampleRate, d.bitDepth, d.channels, wavFormatPCM)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: d.channels, SampleRate: d.sampleRate},
		Data:           data,
		SourceBitDepth: d.bitDepth,
	}); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}
