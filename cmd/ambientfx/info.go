package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/conv"
	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/dsp/effects"
	"github.com/cwbudde/algo-ambient/dsp/engine"
)

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	rate := fs.Float64("rate", core.DefaultSampleRate, "sample rate in Hz")
	block := fs.Int("block", core.DefaultBlockSize, "block size in samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := engine.Open(core.WithSampleRate(*rate), core.WithBlockSize(*block))
	if err != nil {
		return err
	}
	defer e.Cleanup()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Effect\tLatency [samples]\tLatency [ms]\tCapacity\n")
	fmt.Fprintf(tw, "------\t-----------------\t------------\t--------\n")

	capacity := map[engine.Effect]string{
		engine.EffectConvolution: fmt.Sprintf("%d partitions of %d (%.2fs)", core.DefaultMaxIRPartitions, conv.PartitionSize,
			float64(core.DefaultMaxIRPartitions*conv.PartitionSize)/e.SampleRate()),
		engine.EffectGranular: fmt.Sprintf("%d grains, %d source samples", effects.GranularCapacity, arena.GranularSourceCapacity),
		engine.EffectSpectral: fmt.Sprintf("FFT %d", arena.MaxFFTSize),
	}
	for _, f := range []engine.Effect{engine.EffectConvolution, engine.EffectGranular, engine.EffectSpectral} {
		lat := e.Latency(f)
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\n", f, lat, 1000*float64(lat)/e.SampleRate(), capacity[f])
	}
	return tw.Flush()
}
