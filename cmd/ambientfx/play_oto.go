//go:build !headless

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	bytesPerFloat32 = 4
	playPollDelay   = 50 * time.Millisecond
)

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	var ef effectFlags
	ef.register(fs)
	tail := fs.Float64("tail", 2, "seconds of silence played after the input")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ambientfx play [flags] input.wav\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("insufficient arguments")
	}

	input, err := readWAV(fs.Arg(0))
	if err != nil {
		return err
	}
	e, effect, err := ef.openEngine(input.sampleRate, input)
	if err != nil {
		return err
	}
	defer e.Cleanup()

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   input.sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	tailFrames := int(*tail * float64(input.sampleRate))
	src := &pcmReader{s: newStream(e, effect, ef.params(), input, tailFrames, false)}
	player := ctx.NewPlayer(src)
	defer func() { _ = player.Close() }()

	if ef.verbose {
		log.Printf("playing %s through %s at %d Hz", fs.Arg(0), effect, input.sampleRate)
	}
	player.Play()
	for player.IsPlaying() {
		time.Sleep(playPollDelay)
	}
	if src.err != nil {
		return src.err
	}
	return player.Err()
}

// pcmReader adapts a stream to the float32 little-endian byte stream the
// audio device pulls.
type pcmReader struct {
	s   *stream
	buf []float64
	err error
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if r.s.Remaining() == 0 {
		return 0, io.EOF
	}
	frames := len(p) / (2 * bytesPerFloat32)
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < 2*frames {
		r.buf = make([]float64, 2*frames)
	}
	n, err := r.s.Read(r.buf[:2*frames])
	if err != nil {
		r.err = err
		return 0, io.EOF
	}
	for i, v := range r.buf[:2*n] {
		binary.LittleEndian.PutUint32(p[i*bytesPerFloat32:], math.Float32bits(float32(v)))
	}
	return 2 * n * bytesPerFloat32, nil
}
