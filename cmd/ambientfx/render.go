package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	renderChunkFrames = 4096
	minRenderArgs     = 2
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var ef effectFlags
	ef.register(fs)
	bits := fs.Int("bits", 0, "output bit depth: 16 or 24 (default: input depth)")
	tail := fs.Float64("tail", 0, "seconds of silence appended to the input")
	compensate := fs.Bool("compensate", true, "trim the effect latency from the output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ambientfx render [flags] input.wav output.wav\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < minRenderArgs {
		fs.Usage()
		return fmt.Errorf("insufficient arguments")
	}
	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	input, err := readWAV(inputPath)
	if err != nil {
		return err
	}
	if ef.verbose {
		log.Printf("input: %s, %d Hz, %d channels, %d-bit, %d frames",
			inputPath, input.sampleRate, input.channels, input.bitDepth, input.frames())
	}

	e, effect, err := ef.openEngine(input.sampleRate, input)
	if err != nil {
		return err
	}
	defer e.Cleanup()

	depth := *bits
	if depth == 0 {
		depth = input.bitDepth
		if depth != bitsPerSample24 {
			depth = bitsPerSample16
		}
	}

	start := time.Now()
	tailFrames := int(*tail * float64(input.sampleRate))
	out, err := render(newStream(e, effect, ef.params(), input, tailFrames, *compensate))
	if err != nil {
		return err
	}
	out.sampleRate = input.sampleRate
	out.bitDepth = depth

	if err := writeWAV(outputPath, out); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Rendered %s -> %s (%s)\n", filepath.Base(inputPath), filepath.Base(outputPath), effect)
	fmt.Printf("  %d frames, %d Hz, stereo, %d-bit\n", out.frames(), out.sampleRate, out.bitDepth)
	if ef.verbose {
		st := e.Stats()
		log.Printf("latency: %d samples, active grains at end: %d, frozen: %v",
			e.Latency(effect), st.ActiveGrains, st.SpectralFrozen)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(out.frames())/float64(input.sampleRate)/secs)
	}
	return nil
}

// render drains s into interleaved stereo audio.
func render(s *stream) (*audioData, error) {
	out := &audioData{
		samples:  make([]float64, 0, 2*s.Remaining()),
		channels: 2,
	}
	chunk := make([]float64, 2*renderChunkFrames)
	for s.Remaining() > 0 {
		n, err := s.Read(chunk)
		if err != nil {
			return nil, err
		}
		out.samples = append(out.samples, chunk[:2*n]...)
	}
	return out, nil
}
