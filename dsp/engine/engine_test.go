package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/dsp/core"
	"github.com/cwbudde/algo-ambient/internal/testutil"
)

func newTestEngine(t *testing.T, sampleRate float64, blockSize int) *Engine {
	t.Helper()

	e, err := New(core.WithMaxIRPartitions(16))
	require.NoError(t, err)
	require.NoError(t, e.Init(sampleRate, blockSize))
	return e
}

// runBlocks feeds signal through effect f block by block and returns the
// concatenated left and right outputs.
func runBlocks(t *testing.T, e *Engine, f Effect, p Params, left, right []float64) ([]float64, []float64) {
	t.Helper()

	bs := e.BlockSize()
	outL := make([]float64, 0, len(left))
	outR := make([]float64, 0, len(right))
	for start := 0; start+bs <= len(left); start += bs {
		copy(e.InputBuffer(0), left[start:start+bs])
		copy(e.InputBuffer(1), right[start:start+bs])
		require.NoError(t, e.Process(f, p))
		outL = append(outL, e.OutputBuffer(0)...)
		outR = append(outR, e.OutputBuffer(1)...)
	}
	return outL, outR
}

func TestCallsBeforeInitFail(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	assert.False(t, e.Initialized())
	assert.Nil(t, e.InputBuffer(0))
	assert.Nil(t, e.OutputBuffer(1))
	assert.ErrorIs(t, e.ProcessConvolution(0.5), ErrNotInitialized)
	assert.ErrorIs(t, e.ProcessGranular(1024, 10, 0, 0.5, 0), ErrNotInitialized)
	assert.ErrorIs(t, e.ProcessSpectral(0, 0), ErrNotInitialized)
	assert.ErrorIs(t, e.LoadImpulseResponse(10, 1), ErrNotInitialized)
	assert.ErrorIs(t, e.LoadGranularSource(10, 1), ErrNotInitialized)
	assert.ErrorIs(t, e.Reset(), ErrNotInitialized)
	assert.Equal(t, core.DefaultSampleRate, e.SampleRate())
	assert.Equal(t, core.DefaultBlockSize, e.BlockSize())
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	err = e.Init(7999, 128)
	require.ErrorIs(t, err, arena.ErrInvalidSampleRate)
	assert.False(t, e.Initialized())

	err = e.Init(44100, 513)
	require.ErrorIs(t, err, arena.ErrInvalidBlockSize)
	assert.False(t, e.Initialized())

	require.NoError(t, e.Init(48000, 256))
	err = e.Init(48000, 16)
	require.ErrorIs(t, err, arena.ErrInvalidBlockSize)
	assert.True(t, e.Initialized(), "failed Init must keep the previous configuration")
	assert.Equal(t, 48000.0, e.SampleRate())
	assert.Equal(t, 256, e.BlockSize())
}

func TestOpenUsesConfiguredRate(t *testing.T) {
	e, err := Open(core.WithSampleRate(22050), core.WithBlockSize(64))
	require.NoError(t, err)

	assert.True(t, e.Initialized())
	assert.Equal(t, 22050.0, e.SampleRate())
	assert.Len(t, e.InputBuffer(0), 64)
	assert.Len(t, e.OutputBuffer(1), 64)
}

func TestInvalidChannel(t *testing.T) {
	e := newTestEngine(t, 44100, 128)

	assert.Nil(t, e.InputBuffer(2))
	assert.Nil(t, e.OutputBuffer(-1))
	assert.NoError(t, CheckChannel(1))

	err := CheckChannel(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidChannel))
}

func TestSilenceInSilenceOut(t *testing.T) {
	for _, sr := range []float64{8000, 44100, 192000} {
		for _, bs := range []int{32, 128, 512} {
			t.Run(fmt.Sprintf("%.0f/%d", sr, bs), func(t *testing.T) {
				e := newTestEngine(t, sr, bs)
				require.NoError(t, e.SetImpulseResponse(testutil.DeterministicNoise(7, 0.5, 600), 1))

				zeros := make([]float64, bs*20)
				for _, f := range []Effect{EffectConvolution, EffectGranular, EffectSpectral} {
					p := Params{DryWet: 0.7, GrainSize: 512, Density: 40, Position: 0.5, Freeze: 0.5, ShiftSemitones: 5}
					outL, outR := runBlocks(t, e, f, p, zeros, zeros)
					testutil.RequireSilent(t, outL, 1e-12)
					testutil.RequireSilent(t, outR, 1e-12)
				}
			})
		}
	}
}

func TestConvolutionPassThroughWithoutImpulseResponse(t *testing.T) {
	e := newTestEngine(t, 44100, 128)

	left := testutil.DeterministicSine(440, 44100, 0.5, 128*4)
	right := testutil.DeterministicNoise(3, 0.5, 128*4)
	outL, outR := runBlocks(t, e, EffectConvolution, Params{DryWet: 1}, left, right)

	testutil.RequireSliceNearlyEqual(t, outL, left, 0)
	testutil.RequireSliceNearlyEqual(t, outR, right, 0)
}

func TestConvolutionUnitImpulse(t *testing.T) {
	e := newTestEngine(t, 44100, 128)
	require.NoError(t, e.SetImpulseResponse([]float64{1}, 1))
	assert.Equal(t, 1, e.Stats().IRPartitions)
	assert.True(t, e.Flags().Has(arena.FlagIRReady))

	in := testutil.Impulse(128*4, 0)
	outL, outR := runBlocks(t, e, EffectConvolution, Params{DryWet: 1}, in, in)

	want := testutil.Delayed(in, e.Latency(EffectConvolution))
	testutil.RequireSliceNearlyEqual(t, outL, want, 1e-9)
	testutil.RequireSliceNearlyEqual(t, outR, want, 1e-9)
}

func TestSpectralIdentityLatency(t *testing.T) {
	e := newTestEngine(t, 44100, 256)

	in := testutil.DeterministicNoise(11, 0.5, 256*24)
	outL, _ := runBlocks(t, e, EffectSpectral, Params{}, in, in)

	lat := e.Latency(EffectSpectral)
	require.Equal(t, 2048, lat)
	testutil.RequireSliceNearlyEqual(t, outL[lat:], in[:len(in)-lat], 1e-9)
}

func TestGranularProducesGrains(t *testing.T) {
	e := newTestEngine(t, 44100, 128)
	require.NoError(t, e.SetGranularSource(testutil.DeterministicSine(220, 44100, 0.8, 44100), 1))
	assert.True(t, e.Flags().Has(arena.FlagGranularReady))

	zeros := make([]float64, 128*40)
	p := Params{GrainSize: 2048, Density: 50, PitchSpread: 0.5, Position: 0.3, Spray: 0.2}
	outL, outR := runBlocks(t, e, EffectGranular, p, zeros, zeros)

	testutil.RequireFinite(t, outL)
	testutil.RequireFinite(t, outR)
	assert.Positive(t, testutil.Energy(outL))
	assert.Positive(t, e.Stats().ActiveGrains)
}

func TestGranularDeterministicForSeed(t *testing.T) {
	render := func() []float64 {
		e, err := Open(core.WithSeed(99), core.WithMaxIRPartitions(4))
		require.NoError(t, err)
		require.NoError(t, e.SetGranularSource(testutil.DeterministicNoise(5, 0.5, 20000), 2))

		zeros := make([]float64, core.DefaultBlockSize*30)
		p := Params{GrainSize: 512, Density: 80, PitchSpread: 1, Position: 0.5, Spray: 1}
		out, _ := runBlocks(t, e, EffectGranular, p, zeros, zeros)
		return out
	}

	testutil.RequireSliceNearlyEqual(t, render(), render(), 0)
}

func TestCleanupAndReinit(t *testing.T) {
	e := newTestEngine(t, 44100, 128)
	require.NoError(t, e.SetImpulseResponse([]float64{0.5, 0.25}, 1))
	require.NoError(t, e.SetGranularSource(testutil.Ones(1000), 1))

	e.Cleanup()
	assert.False(t, e.Initialized())
	assert.ErrorIs(t, e.ProcessConvolution(1), ErrNotInitialized)
	assert.ErrorIs(t, e.ProcessSpectral(1, 0), ErrNotInitialized)
	assert.Zero(t, e.Flags())

	require.NoError(t, e.Init(48000, 64))
	assert.Equal(t, arena.FlagInitialized, e.Flags())
	assert.Zero(t, e.Stats().IRPartitions)
	testutil.RequireSilent(t, e.OutputBuffer(0), 0)

	in := testutil.DeterministicNoise(2, 0.5, 64*3)
	outL, _ := runBlocks(t, e, EffectConvolution, Params{DryWet: 1}, in, in)
	testutil.RequireSliceNearlyEqual(t, outL, in, 0)
}

func TestResetMatchesFreshEngine(t *testing.T) {
	in := testutil.DeterministicNoise(21, 0.5, 128*24)
	p := Params{Freeze: 0.8, ShiftSemitones: -7}

	used := newTestEngine(t, 44100, 128)
	runBlocks(t, used, EffectSpectral, p, in, in)
	require.NoError(t, used.Reset())
	assert.False(t, used.Stats().SpectralFrozen)

	fresh := newTestEngine(t, 44100, 128)
	gotL, _ := runBlocks(t, used, EffectSpectral, p, in, in)
	wantL, _ := runBlocks(t, fresh, EffectSpectral, p, in, in)
	testutil.RequireSliceNearlyEqual(t, gotL, wantL, 1e-12)
}

func TestParseEffect(t *testing.T) {
	tests := []struct {
		name string
		want Effect
	}{
		{"convolution", EffectConvolution},
		{"Conv", EffectConvolution},
		{" granular ", EffectGranular},
		{"SPECTRAL", EffectSpectral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEffect(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}

	_, err := ParseEffect("chorus")
	assert.Error(t, err)
	assert.Equal(t, "Effect(9)", Effect(9).String())
}
