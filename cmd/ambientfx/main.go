// Command ambientfx runs the ambient effects engine over audio files.
//
// Usage:
//
//	ambientfx render [flags] input.wav output.wav
//	ambientfx play [flags] input.wav
//	ambientfx info [flags]
//
// Examples:
//
//	ambientfx render -effect convolution -ir hall.wav -mix 0.4 dry.wav wet.wav
//	ambientfx render -effect granular -source pad.wav -density 40 -tail 10 in.wav cloud.wav
//	ambientfx render -effect spectral -freeze 1 -shift 12 in.wav frozen.wav
//	ambientfx play -effect spectral -shift -5 in.wav
//	ambientfx info -rate 48000 -block 256
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ambientfx: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: ambientfx <command> [flags] [files]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  render  process input.wav into output.wav\n")
	fmt.Fprintf(os.Stderr, "  play    process input.wav to the default audio device\n")
	fmt.Fprintf(os.Stderr, "  info    print effect latencies and capacities\n")
	fmt.Fprintf(os.Stderr, "\nRun 'ambientfx <command> -h' for command flags.\n")
}
