//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-ambient/dsp/engine"
)

var (
	dsp     *engine.Engine
	funcs   []js.Func
	scratch []float64
)

func main() {
	e, err := engine.New()
	if err != nil {
		panic(err)
	}
	dsp = e

	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		if len(args) < 2 {
			return int(engine.StatusBadSampleRate)
		}
		return status(dsp.Init(args[0].Float(), args[1].Int()))
	}))

	api.Set("writeInput", export(func(args []js.Value) any {
		if len(args) < 2 {
			return int(engine.StatusInvalidChannel)
		}
		ch := args[0].Int()
		if err := engine.CheckChannel(ch); err != nil {
			return status(err)
		}
		dst := dsp.InputBuffer(ch)
		if dst == nil {
			return int(engine.StatusNotInitialized)
		}
		src := args[1]
		n := min(len(dst), src.Length())
		for i := 0; i < n; i++ {
			dst[i] = src.Index(i).Float()
		}
		clear(dst[n:])
		return int(engine.StatusOK)
	}))

	api.Set("readOutput", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		buf := dsp.OutputBuffer(args[0].Int())
		arr := js.Global().Get("Float32Array").New(len(buf))
		for i := range buf {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("processGranular", export(func(args []js.Value) any {
		return status(dsp.ProcessGranular(argInt(args, 0, 2048), argFloat(args, 1, 10),
			argFloat(args, 2, 0), argFloat(args, 3, 0.5), argFloat(args, 4, 0)))
	}))

	api.Set("processConvolution", export(func(args []js.Value) any {
		return status(dsp.ProcessConvolution(argFloat(args, 0, 0.5)))
	}))

	api.Set("processSpectral", export(func(args []js.Value) any {
		return status(dsp.ProcessSpectral(argFloat(args, 0, 0), argFloat(args, 1, 0)))
	}))

	api.Set("loadImpulseResponse", export(func(args []js.Value) any {
		samples, channels := sourceArgs(args)
		return status(dsp.SetImpulseResponse(samples, channels))
	}))

	api.Set("loadGranularSource", export(func(args []js.Value) any {
		samples, channels := sourceArgs(args)
		return status(dsp.SetGranularSource(samples, channels))
	}))

	api.Set("reset", export(func(args []js.Value) any {
		return status(dsp.Reset())
	}))

	api.Set("cleanup", export(func(args []js.Value) any {
		dsp.Cleanup()
		return int(engine.StatusOK)
	}))

	js.Global().Set("AmbientDSP", api)
	select {}
}

// status converts an engine error to the numeric code returned to JavaScript.
func status(err error) int {
	return int(engine.StatusOf(err))
}

// sourceArgs copies a Float32Array of interleaved samples into a reused
// scratch slice.
func sourceArgs(args []js.Value) ([]float64, int) {
	if len(args) < 1 {
		return nil, 1
	}
	src := args[0]
	n := src.Length()
	if cap(scratch) < n {
		scratch = make([]float64, n)
	}
	scratch = scratch[:n]
	for i := 0; i < n; i++ {
		scratch[i] = src.Index(i).Float()
	}
	return scratch, argInt(args, 1, 1)
}

func argFloat(args []js.Value, i int, def float64) float64 {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return def
	}
	return args[i].Float()
}

func argInt(args []js.Value, i, def int) int {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return def
	}
	return args[i].Int()
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
