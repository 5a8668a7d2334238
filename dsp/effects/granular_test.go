package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ambient/dsp/arena"
	"github.com/cwbudde/algo-ambient/internal/testutil"
)

func newTestArena(t *testing.T, sampleRate float64, blockSize int) *arena.Arena {
	t.Helper()

	a := arena.New()
	if err := a.Init(sampleRate, blockSize); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return a
}

func loadGranularSource(t *testing.T, a *arena.Arena, g *Granular, samples []float64, channels int) {
	t.Helper()

	copy(a.GranularSourceRegion(), samples)
	if err := g.LoadSource(len(samples)/channels, channels); err != nil {
		t.Fatalf("LoadSource() error = %v", err)
	}
}

func TestGranularSilentWithoutSource(t *testing.T) {
	a := newTestArena(t, 44100, 128)
	g := NewGranular(a)

	for _, p := range []GranularParams{
		{GrainSize: 256, Density: 100, PitchSpread: 1, Position: 0.5, Spray: 1},
		{GrainSize: -1, Density: math.NaN(), PitchSpread: 9, Position: -4, Spray: 2},
	} {
		for range 20 {
			g.Process(p)
			testutil.RequireSilent(t, a.Output(0), 0)
			testutil.RequireSilent(t, a.Output(1), 0)
		}
	}
	if g.ActiveGrains() != 0 {
		t.Fatalf("ActiveGrains() = %d, want 0", g.ActiveGrains())
	}
}

func TestGranularPoolNeverExceedsCapacity(t *testing.T) {
	a := newTestArena(t, 8000, 512)
	g := NewGranular(a)
	loadGranularSource(t, a, g, testutil.DeterministicNoise(1, 1, 44100), 1)

	// 100 grains/s of 4096 samples at 8 kHz overlap ~51 grains; pitch down
	// keeps them from running off the source end.
	p := GranularParams{GrainSize: 4096, Density: 100, PitchSpread: 0, Position: 0, Spray: 0}
	peak := 0
	for range 400 {
		g.Process(p)
		peak = max(peak, g.ActiveGrains())
		if g.ActiveGrains() > g.Capacity() {
			t.Fatalf("ActiveGrains() = %d exceeds capacity %d", g.ActiveGrains(), g.Capacity())
		}
	}
	if peak < 40 {
		t.Fatalf("peak active grains = %d, expected sustained overlap", peak)
	}
	if g.Capacity() != GranularCapacity {
		t.Fatalf("Capacity() = %d, want %d", g.Capacity(), GranularCapacity)
	}
}

func TestGranularSaturatedPoolDropsSpawns(t *testing.T) {
	a := newTestArena(t, 8000, 512)
	g := NewGranular(a)
	loadGranularSource(t, a, g, testutil.DeterministicNoise(2, 1, 400000), 1)

	for i := range g.grains {
		g.grains[i] = granularGrain{active: true, phaseStep: 1e-9, rate: 1e-9, amp: 1}
	}
	state := g.rng.state
	g.Process(GranularParams{GrainSize: 4096, Density: 100})
	if g.ActiveGrains() != GranularCapacity {
		t.Fatalf("ActiveGrains() = %d, want %d", g.ActiveGrains(), GranularCapacity)
	}
	if g.rng.state != state {
		t.Fatal("random generator advanced without a free slot")
	}
}

func TestGranularDeterministicForSeed(t *testing.T) {
	render := func(seed uint32) []float64 {
		a := newTestArena(t, 44100, 128)
		g := NewGranular(a, WithGranularSeed(seed))
		loadGranularSource(t, a, g, testutil.DeterministicSine(220, 44100, 0.8, 2*44100), 2)

		var out []float64
		for range 50 {
			g.Process(GranularParams{GrainSize: 1024, Density: 40, PitchSpread: 0.5, Position: 0.3, Spray: 0.4})
			out = append(out, a.Output(0)...)
			out = append(out, a.Output(1)...)
		}
		return out
	}

	a, b := render(12345), render(12345)
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
	testutil.RequireFinite(t, a)
	if testutil.Energy(a) == 0 {
		t.Fatal("expected audible grains")
	}

	c := render(777)
	if d, _ := testutil.MaxAbsDiff(a, c); d == 0 {
		t.Fatal("different seeds produced identical output")
	}
}

func TestGranularSingleGrainShape(t *testing.T) {
	const sr = 44100.0
	a := newTestArena(t, sr, 64)
	g := NewGranular(a)
	loadGranularSource(t, a, g, testutil.DC(1, 44100), 1)

	// Density 1 spawns once per second; the first spawn lands on sample
	// 44100, so step until it plays.
	p := GranularParams{GrainSize: 64, Density: 1, PitchSpread: 0, Position: 0.5, Spray: 0}
	blocks := 0
	for g.ActiveGrains() == 0 && blocks < 1000 {
		g.Process(p)
		blocks++
	}
	if g.ActiveGrains() != 1 {
		t.Fatalf("ActiveGrains() = %d, want 1", g.ActiveGrains())
	}

	gr := g.grains[0]
	if gr.rate != 1 {
		t.Fatalf("rate = %v, want 1 with zero pitch spread", gr.rate)
	}
	if gr.amp < granularMinAmp || gr.amp > granularMinAmp+granularAmpRange {
		t.Fatalf("amp = %v out of range", gr.amp)
	}
	if p := gr.gainL*gr.gainL + gr.gainR*gr.gainR; math.Abs(p-1) > 1e-12 {
		t.Fatalf("pan power = %v, want 1", p)
	}

	// A 64-sample grain ends within the next block.
	g.Process(p)
	if g.ActiveGrains() != 0 {
		t.Fatalf("ActiveGrains() = %d after grain end, want 0", g.ActiveGrains())
	}
}

func TestGranularResetAndLoad(t *testing.T) {
	a := newTestArena(t, 44100, 128)
	g := NewGranular(a)
	loadGranularSource(t, a, g, testutil.DeterministicNoise(3, 1, 44100), 1)

	for range 20 {
		g.Process(GranularParams{GrainSize: 2048, Density: 100, Position: 0.2})
	}
	if g.ActiveGrains() == 0 {
		t.Fatal("expected active grains")
	}

	g.Reset()
	if g.ActiveGrains() != 0 || g.spawnAcc != 0 {
		t.Fatalf("Reset left %d grains, acc %v", g.ActiveGrains(), g.spawnAcc)
	}
	if !g.Loaded() {
		t.Fatal("Reset must keep the source")
	}

	// Reset then zero-length block parameters still spawn nothing immediately.
	g.Process(GranularParams{GrainSize: 64, Density: 1})
	testutil.RequireSilent(t, a.Output(0), 0)

	err := g.LoadSource(0, 1)
	if !errors.Is(err, ErrEmptyGranularSource) {
		t.Fatalf("LoadSource(0) error = %v, want ErrEmptyGranularSource", err)
	}
	if g.Loaded() {
		t.Fatal("empty load should unload the source")
	}
}

func TestGranularParamsClamp(t *testing.T) {
	got := GranularParams{GrainSize: 1, Density: 1000, PitchSpread: -1, Position: 2, Spray: math.NaN()}.Clamp()
	want := GranularParams{GrainSize: 64, Density: 100, PitchSpread: 0, Position: 1, Spray: 0}
	if got != want {
		t.Fatalf("Clamp() = %+v, want %+v", got, want)
	}
}

func TestLCGSequence(t *testing.T) {
	seed := uint32(12345)
	r := lcg{state: seed}
	want := seed*1664525 + 1013904223
	v := r.next()
	if r.state != want {
		t.Fatalf("state = %d, want %d", r.state, want)
	}
	if v < 0 || v > 1 {
		t.Fatalf("next() = %v out of [0,1]", v)
	}
}

func TestGranularReadSource(t *testing.T) {
	a := newTestArena(t, 44100, 128)
	g := NewGranular(a)
	source := a.GranularSourceRegion()

	loadGranularSource(t, a, g, []float64{0, 1, 2, 3}, 1)
	for _, tc := range []struct {
		pos, want float64
	}{
		{0.5, 0.5},
		{2.25, 2.25},
		{3, 0},
		{3.5, 0},
	} {
		if got := g.readSource(source, tc.pos); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("mono readSource(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}

	loadGranularSource(t, a, g, []float64{0, 2, 2, 4, 4, 6}, 2)
	for _, tc := range []struct {
		pos, want float64
	}{
		{0, 1},
		{0.5, 2},
		{1.5, 4},
		{2, 0},
	} {
		if got := g.readSource(source, tc.pos); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("stereo readSource(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}
